// Package chatlog persists question/answer records for auditing.
package chatlog

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docqa/internal/domain"
)

// MongoLog writes one document per answered question. Connection
// failure at startup is reported once; the service keeps running
// without history in that case.
type MongoLog struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type MongoConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	AuthSource string
	Database   string
	Collection string
	Timeout    time.Duration
}

type record struct {
	Question      string    `bson:"question"`
	Answer        string    `bson:"answer"`
	ViolationType string    `bson:"violation_type,omitempty"`
	Severity      string    `bson:"severity,omitempty"`
	Timestamp     time.Time `bson:"timestamp"`
}

func NewMongoLog(ctx context.Context, cfg MongoConfig) (*MongoLog, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	uri := fmt.Sprintf("mongodb://%s:%d/", cfg.Host, cfg.Port)
	if cfg.Username != "" && cfg.Password != "" {
		authSource := cfg.AuthSource
		if authSource == "" {
			authSource = "admin"
		}
		// Credentials may contain reserved characters.
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=%s",
			url.QueryEscape(cfg.Username), url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, authSource)
	}

	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)

	// Newest-first history queries lean on this index.
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc_idx"),
	}
	if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoLog{client: client, collection: coll}, nil
}

func (m *MongoLog) Record(ctx context.Context, entry domain.LogEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := m.collection.InsertOne(ctx, record{
		Question:      entry.Question,
		Answer:        entry.Answer,
		ViolationType: entry.ViolationType,
		Severity:      entry.Severity,
		Timestamp:     ts,
	})
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (m *MongoLog) History(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer cur.Close(ctx)

	var records []record
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	entries := make([]domain.LogEntry, len(records))
	for i, r := range records {
		entries[i] = domain.LogEntry{
			Question:      r.Question,
			Answer:        r.Answer,
			ViolationType: r.ViolationType,
			Severity:      r.Severity,
			Timestamp:     r.Timestamp,
		}
	}
	return entries, nil
}

func (m *MongoLog) Available() bool {
	if m == nil || m.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil) == nil
}

func (m *MongoLog) Close(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
