package database

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/soleshop/soleshop-backend-go/config"
)

var DB *mongo.Database

func ConnectDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoURI := os.Getenv("MONGODB_URI")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return err
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return err
	}

	DB = client.Database(config.GetEnv("MONGODB_DB", "soleshop"))
	zap.L().Info("connected to MongoDB", zap.String("database", DB.Name()))

	if err := ensureIndexes(ctx); err != nil {
		return err
	}
	return nil
}

// ensureIndexes creates the indexes the handlers rely on. The unique email
// index backs the duplicate-registration check against concurrent signups.
func ensureIndexes(ctx context.Context) error {
	_, err := Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Ping reports whether the database connection is currently reachable.
func Ping(ctx context.Context) error {
	return DB.Client().Ping(ctx, nil)
}

func Products() *mongo.Collection { return DB.Collection("products") }
func Orders() *mongo.Collection   { return DB.Collection("orders") }
func Users() *mongo.Collection    { return DB.Collection("users") }
