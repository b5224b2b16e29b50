// Package check runs the sanity checklist against a MongoDB deployment.
//
// The checklist is strictly sequential: connectivity, ping, replica-set
// status, database enumeration, per-collection validation and index listing,
// and a single-document sampling probe. Each outcome becomes one Reporter
// line; only a connection failure or a failed ping aborts the run early, and
// the session is closed on every exit path that opened one.
package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/mrlynn/mongocheck/internal/report"
	"github.com/mrlynn/mongocheck/pkg/component/mongodb"
)

// Session is the cluster connection the checklist drives. It is satisfied by
// *mongodb.Client; tests substitute a fake.
type Session interface {
	// Ping issues the administrative ping command.
	Ping(ctx context.Context) error
	// ReplSetStatus fetches replica set status; standalone deployments
	// return an error here, which the checklist degrades to a warning.
	ReplSetStatus(ctx context.Context) (mongodb.ReplSetStatus, error)
	// ListDatabaseNames lists all database names visible to the connection.
	ListDatabaseNames(ctx context.Context) ([]string, error)
	// ListCollections lists collections of a database with type metadata.
	ListCollections(ctx context.Context, database string) ([]mongodb.CollectionInfo, error)
	// ValidateCollection runs structural validation on a collection.
	ValidateCollection(ctx context.Context, database, collection string) (mongodb.ValidationResult, error)
	// ListIndexes lists the indexes of a collection.
	ListIndexes(ctx context.Context, database, collection string) ([]mongodb.IndexInfo, error)
	// SampleDocument fetches one arbitrary document; found is false when the
	// collection is empty.
	SampleDocument(ctx context.Context, database, collection string) (doc string, found bool, err error)
	// Close releases the connection. Idempotent.
	Close() error
}

// DialFunc opens the session the checklist runs against. Dialing is lazy on
// the driver side, so a nil error does not imply the server is reachable.
type DialFunc func(ctx context.Context) (Session, error)

// Checker owns the connection for the duration of one checklist run.
type Checker struct {
	dial DialFunc
	rep  *report.Reporter
}

// New creates a Checker that dials with dial and reports through rep.
func New(dial DialFunc, rep *report.Reporter) *Checker {
	return &Checker{dial: dial, rep: rep}
}

// Run executes the checklist. All outcomes, including failures, are emitted
// through the Reporter; the exit status of the process stays zero for every
// handled failure, so Run returns nothing.
func (c *Checker) Run(ctx context.Context) {
	sess, err := c.dial(ctx)
	if err != nil {
		// Terminal: no session was opened, nothing to close.
		c.rep.Errorf("❌ Failed to connect to MongoDB: %v", err)
		return
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warnw("Error closing MongoDB connection", "error", cerr)
		}
		c.rep.Infof("🔒 Connection closed")
	}()

	c.rep.Infof("✅ Connected to MongoDB")

	// Ping failure is fatal for the run: everything after it is skipped,
	// only the deferred teardown still fires.
	if err := sess.Ping(ctx); err != nil {
		c.rep.Errorf("❌ Ping check failed: %v", err)
		return
	}
	c.rep.Infof("✅ MongoDB is responsive (ping check passed)")

	if status, err := sess.ReplSetStatus(ctx); err != nil {
		c.rep.Warnf("⚠️ Unable to fetch replica set status (may not be a replica set): %v", err)
	} else {
		c.rep.Infof("✅ Replica Set Status: %d (Primary node: %s)", status.MyState, status.Primary())
	}

	databases, err := sess.ListDatabaseNames(ctx)
	if err != nil {
		c.rep.Errorf("❌ Failed to list databases: %v", err)
	} else {
		c.rep.Infof("✅ Databases: %v", databases)
	}

	// The slice reported above is the one iterated here, so the set of
	// databases validated always matches the set reported.
	for _, dbName := range databases {
		c.validateDatabase(ctx, sess, dbName)
	}

	c.sampleData(ctx, sess, databases)
}

// validateDatabase validates every collection of one database. Failures are
// reported per collection and never abort sibling work.
func (c *Checker) validateDatabase(ctx context.Context, sess Session, dbName string) {
	c.rep.Infof("🔍 Validating collections in database: %s", dbName)

	collections, err := sess.ListCollections(ctx, dbName)
	if err != nil {
		c.rep.Errorf("❌ Failed to list collections in %s: %v", dbName, err)
		return
	}

	for _, coll := range collections {
		if coll.IsView() {
			c.rep.Warnf("⚠️ Skipping index check on %s: it is a view, not a collection.", coll.Name)
			continue
		}

		result, err := sess.ValidateCollection(ctx, dbName, coll.Name)
		if err != nil {
			c.rep.Errorf("❌ Failed to validate %s: %v", coll.Name, err)
			continue
		}
		if result.Valid {
			c.rep.Infof("✅ %s collection is valid.", coll.Name)
		} else {
			c.rep.Errorf("❌ %s collection validation failed: %s", coll.Name, result.Details)
		}

		// An invalid verdict does not skip the index listing.
		indexes, err := sess.ListIndexes(ctx, dbName, coll.Name)
		if err != nil {
			c.rep.Errorf("❌ Failed to validate %s: %v", coll.Name, err)
			continue
		}
		c.rep.Infof("✅ Indexes for %s: %s", coll.Name, formatIndexes(indexes))
	}
}

// sampleData fetches one document from the first collection of the first
// database. Empty deployments degrade to warnings rather than failures.
func (c *Checker) sampleData(ctx context.Context, sess Session, databases []string) {
	c.rep.Infof("🔍 Checking data from one collection for sanity")

	if len(databases) == 0 {
		c.rep.Warnf("⚠️ No databases available for sampling")
		return
	}
	sampleDB := databases[0]

	collections, err := sess.ListCollections(ctx, sampleDB)
	if err != nil {
		c.rep.Errorf("❌ Failed to list collections in %s: %v", sampleDB, err)
		return
	}
	if len(collections) == 0 {
		c.rep.Warnf("⚠️ No collections in %s for sampling", sampleDB)
		return
	}
	sampleColl := collections[0].Name

	doc, found, err := sess.SampleDocument(ctx, sampleDB, sampleColl)
	if err != nil {
		c.rep.Errorf("❌ Failed to sample a document from %s: %v", sampleColl, err)
		return
	}
	if found {
		c.rep.Infof("✅ Sample document from %s: %s", sampleColl, doc)
	} else {
		c.rep.Warnf("⚠️ No documents found in %s for sampling", sampleColl)
	}
}

// formatIndexes renders an index listing as "{name: keys, ...}".
func formatIndexes(indexes []mongodb.IndexInfo) string {
	parts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		parts = append(parts, fmt.Sprintf("%s: %s", idx.Name, idx.Keys))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
