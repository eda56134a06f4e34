package main

import (
	"flag"
	"fmt"
	"log"

	"raffle-marketplace-platform/internal/config"
	"raffle-marketplace-platform/internal/database"
	"raffle-marketplace-platform/internal/models"
	"raffle-marketplace-platform/internal/repositories"
	"raffle-marketplace-platform/internal/utils"
)

func main() {
	var (
		email    = flag.String("email", "admin@example.com", "Admin email address")
		name     = flag.String("name", "Administrator", "Admin display name")
		password = flag.String("password", "", "Admin password (required)")
	)
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	dbConfig := database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := database.NewConnection(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	userRepo := repositories.NewUserRepository(db.DB)

	passwordHash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	// Update password and flags if the account already exists
	if existing, err := userRepo.GetByEmail(*email); err == nil {
		_, err = db.DB.Exec(
			"UPDATE users SET password_hash = $1, is_admin = TRUE, is_verified = TRUE, updated_at = NOW() WHERE id = $2",
			passwordHash, existing.ID,
		)
		if err != nil {
			log.Fatal("Failed to update admin user:", err)
		}
		fmt.Printf("Admin user %s updated (ID: %d)\n", *email, existing.ID)
		return
	}

	user, err := userRepo.Create(&models.UserCreateRequest{
		Email:    *email,
		Name:     *name,
		Password: *password,
	}, passwordHash)
	if err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	_, err = db.DB.Exec("UPDATE users SET is_admin = TRUE, is_verified = TRUE, updated_at = NOW() WHERE id = $1", user.ID)
	if err != nil {
		log.Fatal("Failed to grant admin role:", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", *email)
	fmt.Printf("ID: %d\n", user.ID)
}
