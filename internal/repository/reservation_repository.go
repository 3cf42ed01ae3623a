package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"reservation-service/internal/entity"
)

const reservationColumns = `reservation_id, user_id, restaurant_id,
	DATE_FORMAT(reservation_date, '%Y-%m-%d') AS reservation_date,
	TIME_FORMAT(reservation_time, '%H:%i:%s') AS reservation_time,
	people_count`

type ReservationRepository struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db}
}

// CreateReservation inserts res after checking, under a lock on the restaurant row,
// that the user has no booking there on the same date and that the daily limit holds.
func (r *ReservationRepository) CreateReservation(ctx context.Context, res *entity.Reservation) error {
	return r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		limit, err := lockRestaurant(ctx, tx, res.RestaurantID)
		if err != nil {
			return err
		}

		exists, err := userHasReservation(ctx, tx, res.UserID, res.RestaurantID, res.Date, 0)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}

		reserved, err := reservedGuests(ctx, tx, res.RestaurantID, res.Date, 0)
		if err != nil {
			return err
		}
		if reserved+res.PeopleCount > limit {
			return ErrCapacityExceeded
		}

		query := `INSERT INTO reservations (user_id, restaurant_id, reservation_date, reservation_time, people_count)
			VALUES (?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query, res.UserID, res.RestaurantID, res.Date, res.Time, res.PeopleCount)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read reservation id: %w", err)
		}
		res.ID = id
		return nil
	})
}

// UpdateReservation changes date, time and party size of a reservation owned by res.UserID.
// It returns the reservation as it was before the update and fills res.RestaurantID.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, res *entity.Reservation) (*entity.Reservation, error) {
	var previous entity.Reservation
	err := r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? AND user_id = ? FOR UPDATE`
		if err := tx.GetContext(ctx, &previous, query, res.ID, res.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load reservation %d: %w", res.ID, err)
		}
		res.RestaurantID = previous.RestaurantID

		limit, err := lockRestaurant(ctx, tx, res.RestaurantID)
		if err != nil {
			return err
		}

		exists, err := userHasReservation(ctx, tx, res.UserID, res.RestaurantID, res.Date, res.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}

		reserved, err := reservedGuests(ctx, tx, res.RestaurantID, res.Date, res.ID)
		if err != nil {
			return err
		}
		if reserved+res.PeopleCount > limit {
			return ErrCapacityExceeded
		}

		update := `UPDATE reservations
			SET reservation_date = ?, reservation_time = ?, people_count = ?
			WHERE reservation_id = ? AND user_id = ?`
		if _, err := tx.ExecContext(ctx, update, res.Date, res.Time, res.PeopleCount, res.ID, res.UserID); err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to update reservation %d: %w", res.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &previous, nil
}

// DeleteReservation removes a reservation owned by userID and returns the deleted row.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id, userID int64) (*entity.Reservation, error) {
	var deleted entity.Reservation
	err := r.db.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ? AND user_id = ? FOR UPDATE`
		if err := tx.GetContext(ctx, &deleted, query, id, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load reservation %d: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE reservation_id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete reservation %d: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// GetReservationsByUser lists the user's reservations, newest date first and earliest time first within a date.
func (r *ReservationRepository) GetReservationsByUser(ctx context.Context, userID int64) ([]entity.ReservationDetail, error) {
	reservations := []entity.ReservationDetail{}
	query := `
		SELECT
			r.reservation_id AS reservation_id,
			r.restaurant_id AS restaurant_id,
			rt.name AS restaurant_name,
			rt.address AS restaurant_location,
			COALESCE(rt.restaurant_description, '') AS restaurant_description,
			DATE_FORMAT(r.reservation_date, '%Y-%m-%d') AS reservation_date,
			TIME_FORMAT(r.reservation_time, '%H:%i:%s') AS reservation_time,
			r.people_count AS people_count
		FROM reservations AS r
		JOIN restaurants AS rt ON r.restaurant_id = rt.id
		WHERE r.user_id = ?
		ORDER BY r.reservation_date DESC, r.reservation_time ASC`
	if err := r.db.SelectContext(ctx, &reservations, query, userID); err != nil {
		return nil, fmt.Errorf("failed to query reservations of user %d: %w", userID, err)
	}
	return reservations, nil
}

// lockRestaurant takes a row lock on the restaurant so bookings for it are serialized.
func lockRestaurant(ctx context.Context, tx *sqlx.Tx, restaurantID int64) (int, error) {
	var limit int
	query := `SELECT daily_limit FROM restaurants WHERE id = ? FOR UPDATE`
	if err := tx.GetContext(ctx, &limit, query, restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to lock restaurant %d: %w", restaurantID, err)
	}
	return limit, nil
}

// userHasReservation ignores the reservation excludeID (0 matches nothing).
func userHasReservation(ctx context.Context, tx *sqlx.Tx, userID, restaurantID int64, date string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE user_id = ? AND restaurant_id = ? AND reservation_date = ? AND reservation_id <> ?
		)`
	if err := tx.GetContext(ctx, &exists, query, userID, restaurantID, date, excludeID); err != nil {
		return false, fmt.Errorf("failed to check existing reservation: %w", err)
	}
	return exists, nil
}

func reservedGuests(ctx context.Context, tx *sqlx.Tx, restaurantID int64, date string, excludeID int64) (int, error) {
	var reserved int
	query := `SELECT COALESCE(SUM(people_count), 0) FROM reservations
		WHERE restaurant_id = ? AND reservation_date = ? AND reservation_id <> ?`
	if err := tx.GetContext(ctx, &reserved, query, restaurantID, date, excludeID); err != nil {
		return 0, fmt.Errorf("failed to sum reserved guests: %w", err)
	}
	return reserved, nil
}
