package records

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/relgraph/pkg/errors"
)

// Collection names read by MongoSource.
const (
	ProfilesCollection      = "profiles"
	RelationshipsCollection = "relationships"
)

// MongoConfig configures a MongoSource.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration // connect and query timeout; default 10s
}

// MongoSource loads a dataset from MongoDB.
//
// Every document of the profiles collection becomes a Profile and every
// document of the relationships collection a Relation, decoded through the
// bson struct tags.
type MongoSource struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoSource connects to MongoDB and verifies the connection.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo database is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "ping mongo")
	}

	return &MongoSource{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: cfg.Timeout,
	}, nil
}

// Load implements Source.
func (s *MongoSource) Load(ctx context.Context) (Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ds Dataset
	if err := s.findAll(ctx, ProfilesCollection, &ds.Profiles); err != nil {
		return Dataset{}, err
	}
	if err := s.findAll(ctx, RelationshipsCollection, &ds.Relationships); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func (s *MongoSource) findAll(ctx context.Context, collection string, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "query %s", collection)
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", collection)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Source = (*MongoSource)(nil)
