package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/database"
)

func main() {
	email := flag.String("email", "", "account to reset (defaults to the seeded admin)")
	password := flag.String("password", "", "new password (defaults to the seeded admin password)")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if *email == "" {
		*email = cfg.Seed.AdminEmail
	}
	if *password == "" {
		*password = cfg.Seed.AdminPassword
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{DSN: cfg.DSN(), MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	users := repository.NewUserRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Find user
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update, and kick out any live session
	if err := users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		log.Fatalf("❌ Failed to rotate session: %v", err)
	}

	log.Printf("✅ Password for %s has been reset", *email)
}
