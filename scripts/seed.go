package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pawmate/dogwalk-marketplace/internal/adapters/database"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/entities"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	"github.com/pawmate/dogwalk-marketplace/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	userRepo := database.NewUserAdapter(pgClient)
	reservationRepo := database.NewReservationAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				reservations,
				pets,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()
	coord := func(v float64) *float64 { return &v }

	// 1. Seed owners around central Lisbon
	owners := []entities.User{
		{ID: uuid.New().String(), Name: "Maria Costa", Email: "maria@example.com", Number: "+351910000001", Password: "maria-pass", Type: entities.UserTypeOwner, Latitude: coord(38.7223), Longitude: coord(-9.1393), OnlineStatus: 1, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Name: "Joao Silva", Email: "joao@example.com", Number: "+351910000002", Password: "joao-pass", Type: entities.UserTypeOwner, Latitude: coord(38.7369), Longitude: coord(-9.1427), CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Name: "Ana Ferreira", Email: "ana@example.com", Number: "+351910000003", Password: "ana-pass", Type: entities.UserTypeOwner, CreatedAt: now, UpdatedAt: now},
	}

	// 2. Seed walkers at varying distances, prices and scores
	walkers := []entities.User{
		{ID: uuid.New().String(), Name: "Pedro Santos", Email: "pedro@example.com", Number: "+351920000001", Password: "pedro-pass", Type: entities.UserTypeWalker, Latitude: coord(38.7253), Longitude: coord(-9.1500), OnlineStatus: 1, Score: 4.8, RatingCount: 26, PricePerWalk: 12, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Name: "Sofia Almeida", Email: "sofia@example.com", Number: "+351920000002", Password: "sofia-pass", Type: entities.UserTypeWalker, Latitude: coord(38.7436), Longitude: coord(-9.1602), OnlineStatus: 1, Score: 4.5, RatingCount: 11, PricePerWalk: 9, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Name: "Rui Oliveira", Email: "rui@example.com", Number: "+351920000003", Password: "rui-pass", Type: entities.UserTypeWalker, Latitude: coord(38.7071), Longitude: coord(-9.1355), Score: 3.9, RatingCount: 7, PricePerWalk: 7, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Name: "Ines Martins", Email: "ines@example.com", Number: "+351920000004", Password: "ines-pass", Type: entities.UserTypeWalker, OnlineStatus: 1, Score: 5, RatingCount: 2, PricePerWalk: 15, CreatedAt: now, UpdatedAt: now},
	}

	for i := range owners {
		if err := userRepo.Create(ctx, &owners[i]); err != nil {
			log.Printf("Failed to create owner %s: %v", owners[i].Name, err)
		}
	}
	for i := range walkers {
		if err := userRepo.Create(ctx, &walkers[i]); err != nil {
			log.Printf("Failed to create walker %s: %v", walkers[i].Name, err)
		}
	}

	// 3. Seed pets for the owners
	pets := []struct {
		ownerIdx int
		name     string
		breed    string
		age      int
	}{
		{0, "Bobi", "Labrador Retriever", 3},
		{0, "Luna", "Border Collie", 5},
		{1, "Rex", "German Shepherd", 2},
		{2, "Pipoca", "Dachshund", 7},
	}

	for _, p := range pets {
		_, err := pgClient.DB().ExecContext(ctx,
			`INSERT INTO pets (id, user_id, name, breed, age, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), owners[p.ownerIdx].ID, p.name, p.breed, p.age, now, now,
		)
		if err != nil {
			log.Printf("Failed to create pet %s: %v", p.name, err)
		}
	}

	// 4. Seed reservations covering each lifecycle state
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	reservations := []entities.Reservation{
		{ID: uuid.New().String(), UserID: owners[0].ID, WalkerID: walkers[0].ID, Date: tomorrow, Time: "09:00", Duration: 30, Status: entities.ReservationStatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), UserID: owners[0].ID, WalkerID: walkers[1].ID, Date: tomorrow, Time: "14:00", Duration: 45, Status: entities.ReservationStatusConfirmed, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), UserID: owners[1].ID, WalkerID: walkers[0].ID, Date: now.Format("2006-01-02"), Time: "08:00", Duration: 60, Status: entities.ReservationStatusCompleted, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), UserID: owners[2].ID, WalkerID: walkers[2].ID, Date: tomorrow, Time: "18:30", Duration: 20, Status: entities.ReservationStatusCancelled, CreatedAt: now, UpdatedAt: now},
	}

	for i := range reservations {
		if err := reservationRepo.Create(ctx, &reservations[i]); err != nil {
			log.Printf("Failed to create reservation: %v", err)
		}
	}

	log.Printf("Seeded %d owners, %d walkers, %d pets, %d reservations",
		len(owners), len(walkers), len(pets), len(reservations))
}
