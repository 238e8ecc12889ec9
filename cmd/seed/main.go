package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"staysync/internal/config"
	"staysync/internal/models"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// seed resets the schema from the bun models and inserts sample rooms for
// local development. Not for production databases.
func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	dropTables(ctx, db)

	log.Println("Creating tables...")
	createTables(ctx, db)

	log.Println("Seeding sample data...")
	seedData(ctx, db)

	log.Println("✅ Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	// Reverse dependency order.
	tables := []interface{}{(*models.Payment)(nil), (*models.Booking)(nil), (*models.Room)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.Room)(nil), (*models.Booking)(nil), (*models.Payment)(nil)}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	now := time.Now()

	rooms := []models.Room{
		{
			RoomID:        "room-deluxe-101",
			Title:         "Deluxe King Room",
			Description:   "King bed, city view, 32 sqm.",
			PricePerNight: 4500,
			Capacity:      2,
			Available:     true,
			CreatedAt:     now,
		},
		{
			RoomID:        "room-suite-201",
			Title:         "Executive Suite",
			Description:   "Separate living area, balcony, 58 sqm.",
			PricePerNight: 9200,
			Capacity:      4,
			Available:     true,
			CreatedAt:     now,
		},
		{
			RoomID:        "room-standard-301",
			Title:         "Standard Twin Room",
			Description:   "Two single beds, garden view.",
			PricePerNight: 2800,
			Capacity:      2,
			Available:     true,
			CreatedAt:     now,
		},
	}
	if _, err := db.NewInsert().Model(&rooms).Exec(ctx); err != nil {
		log.Fatalf("❌ Failed to seed rooms: %v", err)
	}

	booking := models.Booking{
		BookingID:    "booking-sample-001",
		GuestID:      "guest-001",
		GuestEmail:   "guest@example.com",
		RoomID:       "room-standard-301",
		CheckInDate:  now.AddDate(0, 0, 7),
		CheckOutDate: now.AddDate(0, 0, 9),
		TotalPrice:   5600,
		Status:       models.BookingPending,
		CreatedAt:    now,
	}
	if _, err := db.NewInsert().Model(&booking).Exec(ctx); err != nil {
		log.Fatalf("❌ Failed to seed booking: %v", err)
	}
}
