// Command seed populates the database with generated demo data.
package main

import (
	"context"
	"flag"
	"log"

	"fluss/internal/config"
	"fluss/internal/database"
	"fluss/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	fameCasts := flag.Int("fame", 500, "Number of random fame votes to cast")
	maxDays := flag.Int("days", 30, "Spread post timestamps over the past N days")
	clean := flag.Bool("clean", true, "Clear existing data before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (much faster for large runs)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:   *numUsers,
		NumPosts:   *numPosts,
		FameCasts:  *fameCasts,
		MaxDays:    *maxDays,
		Clean:      *clean,
		SkipBcrypt: *skipBcrypt,
	})

	if err := s.Run(context.Background()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
