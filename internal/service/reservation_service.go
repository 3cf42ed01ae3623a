package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservation-service/internal/cache"
	"reservation-service/internal/config"
	"reservation-service/internal/entity"
	"reservation-service/internal/events"
	"reservation-service/internal/export"
	"reservation-service/internal/metrics"
	"reservation-service/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// ReservationService books, changes and cancels reservations of the authenticated user.
type ReservationService struct {
	repo      ReservationRepository
	cache     Cache
	publisher EventPublisher
	rules     BookingRules
	now       func() time.Time
}

// NewReservationService creates a new instance of ReservationService.
func NewReservationService(repo ReservationRepository, c Cache, publisher EventPublisher, booking config.BookingConfig) (*ReservationService, error) {
	rules, err := NewBookingRules(booking)
	if err != nil {
		return nil, err
	}
	return &ReservationService{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		rules:     rules,
		now:       time.Now,
	}, nil
}

func (s *ReservationService) Create(ctx context.Context, userID, restaurantID int64, date, tm string, peopleCount int) (*entity.Reservation, error) {
	if restaurantID <= 0 {
		metrics.IncReservationCreated("invalid")
		return nil, newError(ErrValidation, "restaurant_id is required")
	}
	normalized, err := s.rules.Validate(date, tm, peopleCount, s.now())
	if err != nil {
		metrics.IncReservationCreated("invalid")
		return nil, err
	}

	res := &entity.Reservation{
		UserID:       userID,
		RestaurantID: restaurantID,
		Date:         date,
		Time:         normalized,
		PeopleCount:  peopleCount,
	}
	if err := s.repo.CreateReservation(ctx, res); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			metrics.IncReservationCreated("not_found")
			return nil, newError(ErrNotFound, "restaurant not found")
		case errors.Is(err, repository.ErrDuplicate):
			metrics.IncReservationCreated("conflict")
			return nil, newError(ErrConflict, "you already have a reservation at this restaurant on this date")
		case errors.Is(err, repository.ErrCapacityExceeded):
			metrics.IncReservationCreated("full")
			return nil, newError(ErrCapacity, "restaurant is fully booked on %s", date)
		}
		logger.Error().Err(err).Int64("user_id", userID).Msg("Error creating reservation")
		return nil, err
	}

	metrics.IncReservationCreated("ok")
	s.invalidate(ctx, res.RestaurantID, res.Date)
	s.publish(ctx, events.TypeCreated, res)
	return res, nil
}

func (s *ReservationService) Update(ctx context.Context, reservationID, userID int64, date, tm string, peopleCount int) (*entity.Reservation, error) {
	normalized, err := s.rules.Validate(date, tm, peopleCount, s.now())
	if err != nil {
		metrics.IncReservationUpdated("invalid")
		return nil, err
	}

	res := &entity.Reservation{
		ID:          reservationID,
		UserID:      userID,
		Date:        date,
		Time:        normalized,
		PeopleCount: peopleCount,
	}
	previous, err := s.repo.UpdateReservation(ctx, res)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			metrics.IncReservationUpdated("not_found")
			return nil, newError(ErrNotFound, "reservation not found")
		case errors.Is(err, repository.ErrDuplicate):
			metrics.IncReservationUpdated("conflict")
			return nil, newError(ErrConflict, "you already have another reservation at this restaurant on this date")
		case errors.Is(err, repository.ErrCapacityExceeded):
			metrics.IncReservationUpdated("full")
			return nil, newError(ErrCapacity, "restaurant is fully booked on %s", date)
		}
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Error updating reservation")
		return nil, err
	}

	metrics.IncReservationUpdated("ok")
	s.invalidate(ctx, res.RestaurantID, previous.Date, res.Date)
	s.publish(ctx, events.TypeUpdated, res)
	return res, nil
}

func (s *ReservationService) Delete(ctx context.Context, reservationID, userID int64) error {
	deleted, err := s.repo.DeleteReservation(ctx, reservationID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "reservation not found")
		}
		logger.Error().Err(err).Int64("reservation_id", reservationID).Msg("Error deleting reservation")
		return err
	}

	metrics.IncReservationCanceled()
	s.invalidate(ctx, deleted.RestaurantID, deleted.Date)
	s.publish(ctx, events.TypeCancelled, deleted)
	return nil
}

func (s *ReservationService) ListForUser(ctx context.Context, userID int64) ([]entity.ReservationDetail, error) {
	reservations, err := s.repo.GetReservationsByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Error listing reservations")
		return nil, err
	}
	return reservations, nil
}

// ExportForUser returns the user's reservations as an xlsx workbook.
func (s *ReservationService) ExportForUser(ctx context.Context, userID int64) ([]byte, error) {
	reservations, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := export.Reservations(reservations)
	if err != nil {
		return nil, fmt.Errorf("failed to export reservations of user %d: %w", userID, err)
	}
	return data, nil
}

func (s *ReservationService) invalidate(ctx context.Context, restaurantID int64, dates ...string) {
	keys := make([]string, 0, len(dates))
	seen := map[string]bool{}
	for _, d := range dates {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		keys = append(keys, cache.AvailabilityKey(restaurantID, d))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("Error invalidating availability cache")
	}
}

// publish never fails the request; the reservation is already committed.
func (s *ReservationService) publish(ctx context.Context, eventType string, res *entity.Reservation) {
	event := entity.ReservationEvent{
		Type:          eventType,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RestaurantID:  res.RestaurantID,
		Date:          res.Date,
		Time:          res.Time,
		PeopleCount:   res.PeopleCount,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error().Err(err).Str("key", events.MessageKey(event)).Msg("Error publishing reservation event")
	}
}

// BookingRules are the date, time and party size constraints of a reservation.
type BookingRules struct {
	location     *time.Location
	windowDays   int
	maxPartySize int
	opens        string // HH:MM:SS
	closes       string // HH:MM:SS
}

func NewBookingRules(cfg config.BookingConfig) (BookingRules, error) {
	opens, err := NormalizeTime(cfg.Opens)
	if err != nil {
		return BookingRules{}, fmt.Errorf("invalid SERVICE_OPENS %q: %w", cfg.Opens, err)
	}
	closes, err := NormalizeTime(cfg.Closes)
	if err != nil {
		return BookingRules{}, fmt.Errorf("invalid SERVICE_CLOSES %q: %w", cfg.Closes, err)
	}
	if closes < opens {
		return BookingRules{}, fmt.Errorf("SERVICE_CLOSES %s is before SERVICE_OPENS %s", closes, opens)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return BookingRules{
		location:     loc,
		windowDays:   cfg.WindowDays,
		maxPartySize: cfg.MaxPartySize,
		opens:        opens,
		closes:       closes,
	}, nil
}

// Window returns the first and last bookable date relative to now.
func (r BookingRules) Window(now time.Time) (first, last string) {
	today := now.In(r.location)
	return today.Format(dateLayout), today.AddDate(0, 0, r.windowDays-1).Format(dateLayout)
}

// Validate checks a requested slot and returns the time as HH:MM:SS.
func (r BookingRules) Validate(date, tm string, peopleCount int, now time.Time) (string, error) {
	if _, err := time.ParseInLocation(dateLayout, date, r.location); err != nil {
		return "", newError(ErrValidation, "reservation_date must be YYYY-MM-DD")
	}
	first, last := r.Window(now)
	// ISO dates compare correctly as strings
	if date < first || date > last {
		return "", newError(ErrValidation, "reservation_date must be between %s and %s", first, last)
	}

	normalized, err := NormalizeTime(tm)
	if err != nil {
		return "", newError(ErrValidation, "reservation_time must be HH:MM or HH:MM:SS")
	}
	if normalized < r.opens || normalized > r.closes {
		return "", newError(ErrValidation, "reservation_time must be between %s and %s", r.opens[:5], r.closes[:5])
	}

	if peopleCount < 1 || peopleCount > r.maxPartySize {
		return "", newError(ErrValidation, "people_count must be between 1 and %d", r.maxPartySize)
	}
	return normalized, nil
}

// NormalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeTime(tm string) (string, error) {
	for _, layout := range []string{timeLayout, "15:04"} {
		if t, err := time.Parse(layout, tm); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time %q", tm)
}
