package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"dayflow/internal/database"
)

// One-shot migration from the legacy "habits" collection to goals.
// Habits tracked frequency/target_days/streak; goals track free-form
// progress. A habit's streak against its target becomes the initial
// progress percentage.
//
// Usage: go run scripts/migrate_habits.go [-dry-run]

type legacyHabit struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"userId"`
	Title      string    `bson:"title"`
	Notes      string    `bson:"notes,omitempty"`
	Frequency  string    `bson:"frequency,omitempty"`
	TargetDays int       `bson:"targetDays,omitempty"`
	Streak     int       `bson:"streak,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
}

type migrationStats struct {
	Habits   int
	Migrated int
	Skipped  int
	Errors   int
}

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	_ = godotenv.Load()

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}

	mongoDB, err := database.NewMongoDB(mongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	defer mongoDB.Close(ctx)

	habits := mongoDB.Collection("habits")
	goals := mongoDB.Collection("goals")

	cursor, err := habits.Find(ctx, bson.M{})
	if err != nil {
		log.Fatalf("❌ Failed to read habits: %v", err)
	}
	defer cursor.Close(ctx)

	stats := migrationStats{}
	for cursor.Next(ctx) {
		var habit legacyHabit
		if err := cursor.Decode(&habit); err != nil {
			log.Printf("⚠️ Skipping undecodable habit: %v", err)
			stats.Errors++
			continue
		}
		stats.Habits++

		// Idempotent: rerunning skips habits already migrated.
		count, err := goals.CountDocuments(ctx, bson.M{"migratedFromHabit": habit.ID})
		if err != nil {
			log.Printf("⚠️ Lookup failed for habit %s: %v", habit.ID, err)
			stats.Errors++
			continue
		}
		if count > 0 {
			stats.Skipped++
			continue
		}

		goal := habitToGoal(&habit)
		if *dryRun {
			log.Printf("🔎 [DRY RUN] Would migrate habit %q (user %s, streak %d) to goal with progress %d",
				habit.Title, habit.UserID, habit.Streak, goal["progress"])
			stats.Migrated++
			continue
		}

		if _, err := goals.InsertOne(ctx, goal); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				stats.Skipped++
				continue
			}
			log.Printf("❌ Insert failed for habit %s: %v", habit.ID, err)
			stats.Errors++
			continue
		}
		stats.Migrated++
	}
	if err := cursor.Err(); err != nil {
		log.Fatalf("❌ Cursor error: %v", err)
	}

	fmt.Println("\n=== Habit Migration Summary ===")
	fmt.Printf("Habits found:   %d\n", stats.Habits)
	fmt.Printf("Migrated:       %d\n", stats.Migrated)
	fmt.Printf("Already done:   %d\n", stats.Skipped)
	fmt.Printf("Errors:         %d\n", stats.Errors)
	if *dryRun {
		fmt.Println("(dry run, nothing was written)")
	}
}

// habitToGoal maps a legacy habit document onto the goal shape. Streak
// against target days becomes the starting progress, capped at 100.
func habitToGoal(habit *legacyHabit) bson.M {
	progress := 0
	if habit.TargetDays > 0 {
		progress = habit.Streak * 100 / habit.TargetDays
		if progress > 100 {
			progress = 100
		}
	}

	description := habit.Notes
	if habit.Frequency != "" {
		if description != "" {
			description += "\n"
		}
		description += "Habit cadence: " + habit.Frequency
	}

	now := time.Now().UTC()
	createdAt := habit.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return bson.M{
		"_id":               uuid.NewString(),
		"userId":            habit.UserID,
		"title":             habit.Title,
		"description":       description,
		"category":          "habit",
		"progress":          progress,
		"createdAt":         createdAt,
		"updatedAt":         now,
		"migratedFromHabit": habit.ID,
	}
}
