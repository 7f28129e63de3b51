package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB wraps the MongoDB client and database.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

const CollectionUsers = "users"

// NewMongoDB connects with pooling and pings the primary.
func NewMongoDB(uri string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	if dbName == "" {
		dbName = "dayflow"
	}

	log.Printf("✅ MongoDB connected (database: %s)", dbName)
	return &MongoDB{
		client:   client,
		database: client.Database(dbName),
		dbName:   dbName,
	}, nil
}

// extractDBName pulls the database name out of the connection URI path,
// e.g. mongodb://localhost:27017/dayflow?authSource=admin -> dayflow.
func extractDBName(uri string) string {
	lastSlash, questionMark := -1, -1
	for i, c := range uri {
		if c == '/' {
			lastSlash = i
		}
		if c == '?' && questionMark == -1 {
			questionMark = i
		}
	}
	if lastSlash == -1 {
		return "dayflow"
	}
	start, end := lastSlash+1, len(uri)
	if questionMark != -1 && questionMark > lastSlash {
		end = questionMark
	}
	if start < end {
		return uri[start:end]
	}
	return "dayflow"
}

// Initialize creates the user indexes. Row-store indexes are created by the
// store package.
func (m *MongoDB) Initialize(ctx context.Context) error {
	log.Println("📦 Initializing MongoDB indexes...")
	_, err := m.database.Collection(CollectionUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Collection returns a collection handle.
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// Database returns the database handle.
func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

// Ping checks connectivity.
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
