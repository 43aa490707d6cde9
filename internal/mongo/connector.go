package mongo

import (
	"context"
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/dial"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
)

// ConnectOptions defines the MongoDB client and its connection retry behavior.
type ConnectOptions struct {
	URI      string // ex: "mongodb://localhost:27017"
	Database string // ex: "notes"

	Retry dial.RetryOptions
}

// New connects to MongoDB and waits until the primary answers a ping.
// Returns the client (the caller must Disconnect it) and the database.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*mongo.Client, *mongo.Database, error) {
	if opts.URI == "" {
		return nil, nil, fmt.Errorf("mongo URI is required")
	}
	if opts.Database == "" {
		return nil, nil, fmt.Errorf("mongo database name is required")
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.Retry.PingTimeout))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mongo configuration: %w", err)
	}

	ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	if err := dial.Retry(ctx, "mongo", redactURI(opts.URI), ping, opts.Retry, log); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, client.Database(opts.Database), nil
}

// redactURI drops credentials before the URI reaches a log line.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "mongodb://<unparsable>"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.String()
}
