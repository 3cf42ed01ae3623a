package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"reservation-service/internal/entity"
)

var tables = []struct {
	name  string
	query string
}{
	{
		name: "users",
		query: `
		CREATE TABLE IF NOT EXISTS users (
			id INT NOT NULL AUTO_INCREMENT,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL,
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`,
	},
	{
		name: "restaurants",
		query: `
		CREATE TABLE IF NOT EXISTS restaurants (
			id INT NOT NULL AUTO_INCREMENT,
			name VARCHAR(255) NOT NULL,
			address VARCHAR(255) NOT NULL,
			restaurant_description TEXT,
			daily_limit INT NOT NULL DEFAULT 0,
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`,
	},
	{
		name: "reservations",
		query: `
		CREATE TABLE IF NOT EXISTS reservations (
			reservation_id INT NOT NULL AUTO_INCREMENT,
			user_id INT NOT NULL,
			restaurant_id INT NOT NULL,
			reservation_date DATE NOT NULL,
			reservation_time TIME NOT NULL,
			people_count INT NOT NULL,
			PRIMARY KEY (reservation_id),
			UNIQUE KEY uq_reservations_user_restaurant_date (user_id, restaurant_id, reservation_date),
			KEY idx_reservations_restaurant_date (restaurant_id, reservation_date),
			CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			CONSTRAINT fk_reservations_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`,
	},
}

// AutoMigrate creates the users, restaurants and reservations tables if they do not exist.
func AutoMigrate(ctx context.Context, db *sqlx.DB, retries int) error {
	for _, table := range tables {
		var err error
		for i := 0; i <= retries; i++ {
			if i > 0 {
				// Retry creating the table
				time.Sleep(1 * time.Second)
			}
			if _, err = db.ExecContext(ctx, table.query); err == nil {
				break
			}
			log.Warn().Err(err).Str("table", table.name).Msgf("migration attempt %d failed", i+1)
		}
		if err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}

// SeedRestaurants inserts restaurants when the table is empty and returns how many were added.
func SeedRestaurants(ctx context.Context, db *sqlx.DB, restaurants []entity.Restaurant) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM restaurants`); err != nil {
		return 0, fmt.Errorf("failed to count restaurants: %w", err)
	}
	if count > 0 || len(restaurants) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO restaurants (name, address, restaurant_description, daily_limit)
		VALUES (:name, :address, :restaurant_description, :daily_limit)`
	for _, r := range restaurants {
		if _, err := tx.NamedExecContext(ctx, query, r); err != nil {
			return 0, fmt.Errorf("failed to insert restaurant %q: %w", r.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit restaurants: %w", err)
	}
	return len(restaurants), nil
}
