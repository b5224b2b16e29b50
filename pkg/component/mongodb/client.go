// Package mongodb wraps the MongoDB driver with the administrative operations
// the sanity checklist needs: ping, replica-set status, database and
// collection enumeration, structural validation, index listing and document
// sampling.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	mongodbopts "github.com/mrlynn/mongocheck/pkg/options/mongodb"
)

// adminDatabase is the database administrative commands run against.
const adminDatabase = "admin"

// Client wraps mongo.Client for the sanity checklist.
//
// Connect does NOT verify the server is reachable: the driver dials lazily,
// so connectivity is only proven by the first command (the checklist's ping
// step). Close is idempotent and safe on every exit path.
type Client struct {
	client *mongo.Client
	opts   *mongodbopts.Options
}

// Connect creates a new MongoDB client from the provided options.
// It validates the options, builds the connection URI and configures the
// pool and timeouts, but does not ping the server.
func Connect(ctx context.Context, opts *mongodbopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("mongodb options cannot be nil")
	}

	uri := mongodbopts.BuildURI(opts)

	clientOpts := mongoopts.Client().ApplyURI(uri)

	// Apply connection pool settings
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}
	if opts.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(opts.MinPoolSize)
	}

	// Apply timeout settings
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.SocketTimeout > 0 {
		clientOpts.SetSocketTimeout(opts.SocketTimeout)
	}
	if opts.ServerSelectionTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	}

	if opts.Direct {
		clientOpts.SetDirect(opts.Direct)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	return &Client{
		client: client,
		opts:   opts,
	}, nil
}

// Ping issues the administrative ping command to verify the server responds.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Database(adminDatabase).RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// ReplSetStatus fetches the replica set status via replSetGetStatus.
// Standalone deployments reject the command; callers treat that as a
// degraded (warning) outcome, not a failure.
func (c *Client) ReplSetStatus(ctx context.Context) (ReplSetStatus, error) {
	var status ReplSetStatus
	res := c.client.Database(adminDatabase).RunCommand(ctx, bson.D{{Key: "replSetGetStatus", Value: 1}})
	if err := res.Decode(&status); err != nil {
		return ReplSetStatus{}, err
	}
	return status, nil
}

// ListDatabaseNames lists all database names visible to the connection.
func (c *Client) ListDatabaseNames(ctx context.Context) ([]string, error) {
	return c.client.ListDatabaseNames(ctx, bson.D{})
}

// ListCollections lists the collections of a database with their type
// metadata, so callers can tell views from base collections.
func (c *Client) ListCollections(ctx context.Context, database string) ([]CollectionInfo, error) {
	specs, err := c.client.Database(database).ListCollectionSpecifications(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	infos := make([]CollectionInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, CollectionInfo{Name: spec.Name, Type: spec.Type})
	}
	return infos, nil
}

// ValidateCollection runs the validate command against a collection and
// returns the verdict together with the full server payload.
func (c *Client) ValidateCollection(ctx context.Context, database, collection string) (ValidationResult, error) {
	var payload bson.Raw
	res := c.client.Database(database).RunCommand(ctx, bson.D{{Key: "validate", Value: collection}})
	if err := res.Decode(&payload); err != nil {
		return ValidationResult{}, err
	}

	valid, _ := payload.Lookup("valid").BooleanOK()
	return ValidationResult{Valid: valid, Details: payload.String()}, nil
}

// ListIndexes lists the index specifications of a collection.
func (c *Client) ListIndexes(ctx context.Context, database, collection string) ([]IndexInfo, error) {
	specs, err := c.client.Database(database).Collection(collection).Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]IndexInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, IndexInfo{Name: spec.Name, Keys: spec.KeysDocument.String()})
	}
	return infos, nil
}

// SampleDocument fetches one arbitrary document from a collection, rendered
// as extended JSON. found is false when the collection is empty.
func (c *Client) SampleDocument(ctx context.Context, database, collection string) (doc string, found bool, err error) {
	var raw bson.Raw
	err = c.client.Database(database).Collection(collection).FindOne(ctx, bson.D{}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw.String(), true, nil
}

// Close closes the MongoDB connection gracefully.
// This method is idempotent and safe to call multiple times.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}
