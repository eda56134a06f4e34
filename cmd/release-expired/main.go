package main

import (
	"flag"
	"fmt"
	"log"

	"raffle-marketplace-platform/internal/config"
	"raffle-marketplace-platform/internal/database"
	"raffle-marketplace-platform/internal/repositories"
)

// Releases expired ticket reservations. The server runs the same sweep on a
// timer; this tool covers one-off cleanup when the server is down.
func main() {
	raffleID := flag.Int("raffle", 0, "Raffle ID to sweep (0 sweeps all raffles)")
	flag.Parse()

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

	ticketRepo := repositories.NewTicketRepository(db.DB)

	released, err := ticketRepo.ReleaseExpired(*raffleID)
	if err != nil {
		log.Fatal("Failed to release expired reservations:", err)
	}

	fmt.Printf("Released %d expired reservations\n", released)
}
