package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlynn/mongocheck/internal/report"
	"github.com/mrlynn/mongocheck/pkg/component/mongodb"
)

// fakeSession scripts the cluster responses the checklist sees.
type fakeSession struct {
	pingErr    error
	replStatus mongodb.ReplSetStatus
	replErr    error
	databases  []string
	listDBErr  error

	// keyed by database name
	collections map[string][]mongodb.CollectionInfo
	listCollErr map[string]error

	// keyed by "db/coll"
	validations  map[string]mongodb.ValidationResult
	validateErr  map[string]error
	indexes      map[string][]mongodb.IndexInfo
	listIdxErr   map[string]error
	samples      map[string]string
	sampleErr    map[string]error
	validated    []string
	iteratedDBs  []string
	closed       int
	closeErr     error
	sampledNames []string
}

func (f *fakeSession) Ping(context.Context) error { return f.pingErr }

func (f *fakeSession) ReplSetStatus(context.Context) (mongodb.ReplSetStatus, error) {
	return f.replStatus, f.replErr
}

func (f *fakeSession) ListDatabaseNames(context.Context) ([]string, error) {
	if f.listDBErr != nil {
		return nil, f.listDBErr
	}
	return f.databases, nil
}

func (f *fakeSession) ListCollections(_ context.Context, database string) ([]mongodb.CollectionInfo, error) {
	f.iteratedDBs = append(f.iteratedDBs, database)
	if err := f.listCollErr[database]; err != nil {
		return nil, err
	}
	return f.collections[database], nil
}

func (f *fakeSession) ValidateCollection(_ context.Context, database, collection string) (mongodb.ValidationResult, error) {
	key := database + "/" + collection
	f.validated = append(f.validated, key)
	if err := f.validateErr[key]; err != nil {
		return mongodb.ValidationResult{}, err
	}
	return f.validations[key], nil
}

func (f *fakeSession) ListIndexes(_ context.Context, database, collection string) ([]mongodb.IndexInfo, error) {
	key := database + "/" + collection
	if err := f.listIdxErr[key]; err != nil {
		return nil, err
	}
	return f.indexes[key], nil
}

func (f *fakeSession) SampleDocument(_ context.Context, database, collection string) (string, bool, error) {
	key := database + "/" + collection
	f.sampledNames = append(f.sampledNames, key)
	if err := f.sampleErr[key]; err != nil {
		return "", false, err
	}
	doc, ok := f.samples[key]
	return doc, ok, nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return f.closeErr
}

// healthySession is a reachable single-database deployment with one valid
// collection holding one document.
func healthySession() *fakeSession {
	return &fakeSession{
		replStatus: mongodb.ReplSetStatus{
			Set:     "rs0",
			MyState: 1,
			Members: []mongodb.ReplSetMember{
				{Name: "mongo-0:27017", StateStr: "PRIMARY", Self: true},
				{Name: "mongo-1:27017", StateStr: "SECONDARY"},
			},
		},
		databases: []string{"appdb"},
		collections: map[string][]mongodb.CollectionInfo{
			"appdb": {{Name: "users", Type: "collection"}},
		},
		validations: map[string]mongodb.ValidationResult{
			"appdb/users": {Valid: true, Details: `{"valid": true}`},
		},
		indexes: map[string][]mongodb.IndexInfo{
			"appdb/users": {{Name: "_id_", Keys: `{"_id": 1}`}},
		},
		samples: map[string]string{
			"appdb/users": `{"_id": {"$oid": "65f0"}, "name": "ada"}`,
		},
	}
}

func runChecker(t *testing.T, sess *fakeSession, dialErr error, threshold report.Level) string {
	t.Helper()

	var buf bytes.Buffer
	dial := func(context.Context) (Session, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return sess, nil
	}
	New(dial, report.New(&buf, threshold)).Run(context.Background())
	return buf.String()
}

func TestRun_HealthyReplicaSet(t *testing.T) {
	sess := healthySession()
	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "✅ Connected to MongoDB")
	assert.Contains(t, out, "✅ MongoDB is responsive (ping check passed)")
	assert.Contains(t, out, "✅ Replica Set Status: 1 (Primary node: mongo-0:27017)")
	assert.Contains(t, out, "✅ Databases: [appdb]")
	assert.Contains(t, out, "🔍 Validating collections in database: appdb")
	assert.Contains(t, out, "✅ users collection is valid.")
	assert.Contains(t, out, "✅ Indexes for users: {_id_: {\"_id\": 1}}")
	assert.Contains(t, out, "✅ Sample document from users:")
	assert.Contains(t, out, "🔒 Connection closed")
	assert.Equal(t, 1, sess.closed)
}

func TestRun_StandaloneCompletesWithWarning(t *testing.T) {
	sess := healthySession()
	sess.replErr = errors.New("not running with --replSet")

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "⚠️ Unable to fetch replica set status (may not be a replica set): not running with --replSet")
	assert.NotContains(t, out, "Replica Set Status:")

	// The rest of the checklist still runs through teardown.
	assert.Contains(t, out, "✅ users collection is valid.")
	assert.Contains(t, out, "🔒 Connection closed")
	assert.Equal(t, 1, sess.closed)
}

func TestRun_PingFailureAbortsButCloses(t *testing.T) {
	sess := healthySession()
	sess.pingErr = errors.New("server selection timeout")

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "❌ Ping check failed: server selection timeout")
	assert.NotContains(t, out, "Databases:")
	assert.NotContains(t, out, "Validating collections")
	assert.NotContains(t, out, "Checking data")
	assert.Contains(t, out, "🔒 Connection closed")
	assert.Equal(t, 1, sess.closed)
	assert.Empty(t, sess.validated)
}

func TestRun_ConnectFailure(t *testing.T) {
	out := runChecker(t, nil, errors.New("invalid uri"), report.LevelInfo)

	assert.Contains(t, out, "❌ Failed to connect to MongoDB: invalid uri")
	// No session was opened, so no closed line.
	assert.NotContains(t, out, "🔒 Connection closed")
}

func TestRun_ViewSkippedWithSingleWarning(t *testing.T) {
	sess := healthySession()
	sess.collections["appdb"] = []mongodb.CollectionInfo{
		{Name: "users", Type: "collection"},
		{Name: "active_users", Type: "view"},
	}

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Equal(t, 1, strings.Count(out, "⚠️ Skipping index check on active_users: it is a view, not a collection."))
	assert.NotContains(t, out, "Indexes for active_users")
	assert.NotContains(t, sess.validated, "appdb/active_users")

	// The sibling base collection is still validated.
	assert.Contains(t, sess.validated, "appdb/users")
}

func TestRun_InvalidCollectionReportsPayload(t *testing.T) {
	sess := healthySession()
	sess.validations["appdb/users"] = mongodb.ValidationResult{
		Valid:   false,
		Details: `{"valid": false, "errors": ["index count mismatch"]}`,
	}

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, `❌ users collection validation failed: {"valid": false, "errors": ["index count mismatch"]}`)
	// An invalid verdict does not skip the index listing.
	assert.Contains(t, out, "✅ Indexes for users:")
}

func TestRun_CollectionFailureDoesNotAbortSiblings(t *testing.T) {
	sess := healthySession()
	sess.collections["appdb"] = []mongodb.CollectionInfo{
		{Name: "broken", Type: "collection"},
		{Name: "users", Type: "collection"},
	}
	sess.validateErr = map[string]error{"appdb/broken": errors.New("command failed")}

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "❌ Failed to validate broken: command failed")
	assert.Contains(t, out, "✅ users collection is valid.")
	assert.Contains(t, out, "🔒 Connection closed")
}

func TestRun_IndexListingFailureContinues(t *testing.T) {
	sess := healthySession()
	sess.collections["appdb"] = []mongodb.CollectionInfo{
		{Name: "users", Type: "collection"},
		{Name: "orders", Type: "collection"},
	}
	sess.validations["appdb/orders"] = mongodb.ValidationResult{Valid: true}
	sess.indexes["appdb/orders"] = []mongodb.IndexInfo{{Name: "_id_", Keys: `{"_id": 1}`}}
	sess.listIdxErr = map[string]error{"appdb/users": errors.New("unauthorized")}

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "❌ Failed to validate users: unauthorized")
	assert.Contains(t, out, "✅ Indexes for orders:")
}

func TestRun_EmptyCollectionSamplingWarns(t *testing.T) {
	sess := healthySession()
	delete(sess.samples, "appdb/users")

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "⚠️ No documents found in users for sampling")
	assert.NotContains(t, out, "Sample document from")
}

func TestRun_NoDatabasesSamplingWarns(t *testing.T) {
	sess := healthySession()
	sess.databases = nil

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "✅ Databases: []")
	assert.Contains(t, out, "⚠️ No databases available for sampling")
	assert.Contains(t, out, "🔒 Connection closed")
}

func TestRun_NoCollectionsSamplingWarns(t *testing.T) {
	sess := healthySession()
	sess.collections["appdb"] = nil

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "⚠️ No collections in appdb for sampling")
}

func TestRun_DatabaseListFailureStillReachesTeardown(t *testing.T) {
	sess := healthySession()
	sess.listDBErr = errors.New("unauthorized")

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "❌ Failed to list databases: unauthorized")
	assert.Contains(t, out, "⚠️ No databases available for sampling")
	assert.Contains(t, out, "🔒 Connection closed")
	assert.Empty(t, sess.validated)
}

// TestRun_ReportedDatabasesMatchIterated checks that the databases printed in
// the enumeration step are exactly the ones walked during validation.
func TestRun_ReportedDatabasesMatchIterated(t *testing.T) {
	sess := healthySession()
	sess.databases = []string{"appdb", "metrics", "archive"}
	for _, db := range sess.databases {
		if _, ok := sess.collections[db]; !ok {
			sess.collections[db] = nil
		}
	}

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, fmt.Sprintf("✅ Databases: %v", sess.databases))
	// Validation iterates every enumerated database; sampling re-lists the
	// first one, hence the extra entry.
	require.GreaterOrEqual(t, len(sess.iteratedDBs), len(sess.databases))
	assert.Equal(t, sess.databases, sess.iteratedDBs[:len(sess.databases)])
}

func TestRun_VerbosityErrorShowsOnlyErrors(t *testing.T) {
	sess := healthySession()
	sess.replErr = errors.New("standalone")
	sess.validateErr = map[string]error{"appdb/users": errors.New("command failed")}

	out := runChecker(t, sess, nil, report.LevelError)

	assert.Contains(t, out, "❌ Failed to validate users: command failed")
	assert.NotContains(t, out, "✅")
	assert.NotContains(t, out, "⚠️")
}

func TestRun_SamplingErrorReported(t *testing.T) {
	sess := healthySession()
	sess.sampleErr = map[string]error{"appdb/users": errors.New("cursor timeout")}

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "❌ Failed to sample a document from users: cursor timeout")
	assert.Contains(t, out, "🔒 Connection closed")
}

func TestRun_CloseErrorStillReportsClosed(t *testing.T) {
	sess := healthySession()
	sess.closeErr = errors.New("already disconnected")

	out := runChecker(t, sess, nil, report.LevelInfo)

	assert.Contains(t, out, "🔒 Connection closed")
}

// Compile-time check that the driver-backed client satisfies Session.
var _ Session = (*mongodb.Client)(nil)
