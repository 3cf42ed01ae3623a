package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reservation-service/internal/entity"
)

type RestaurantRepository struct {
	db *DB
}

func NewRestaurantRepository(db *DB) *RestaurantRepository {
	return &RestaurantRepository{db}
}

func (r *RestaurantRepository) GetRestaurants(ctx context.Context) ([]entity.Restaurant, error) {
	restaurants := []entity.Restaurant{}
	query := `SELECT id, name, address, COALESCE(restaurant_description, '') AS restaurant_description, daily_limit
		FROM restaurants ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &restaurants, query); err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	return restaurants, nil
}

func (r *RestaurantRepository) GetRestaurantByID(ctx context.Context, id int64) (*entity.Restaurant, error) {
	var restaurant entity.Restaurant
	query := `SELECT id, name, address, COALESCE(restaurant_description, '') AS restaurant_description, daily_limit
		FROM restaurants WHERE id = ?`
	if err := r.db.GetContext(ctx, &restaurant, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant %d: %w", id, err)
	}
	return &restaurant, nil
}

// GetAvailability returns the daily limit of the restaurant and the guests already booked on date.
func (r *RestaurantRepository) GetAvailability(ctx context.Context, restaurantID int64, date string) (*entity.Availability, error) {
	var availability entity.Availability
	query := `SELECT rt.daily_limit AS daily_limit, COALESCE(SUM(r.people_count), 0) AS reserved
		FROM restaurants AS rt
		LEFT JOIN reservations AS r ON r.restaurant_id = rt.id AND r.reservation_date = ?
		WHERE rt.id = ?
		GROUP BY rt.id, rt.daily_limit`
	if err := r.db.GetContext(ctx, &availability, query, date, restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get availability for restaurant %d: %w", restaurantID, err)
	}
	return &availability, nil
}
