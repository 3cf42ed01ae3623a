package client

import (
	"context"
	"time"

	"reservation-service/internal/config"
	"reservation-service/internal/service"
)

// defaultRules are the server defaults: 7 day window, 14:00 to 22:00, parties of up to 10.
var defaultRules = mustRules(config.BookingConfig{
	Location:     time.Local,
	WindowDays:   7,
	MaxPartySize: 10,
	Opens:        "14:00",
	Closes:       "22:00",
})

func mustRules(cfg config.BookingConfig) service.BookingRules {
	rules, err := service.NewBookingRules(cfg)
	if err != nil {
		panic(err)
	}
	return rules
}

// BookingWindow returns the first and last date a reservation can be made for.
func BookingWindow(now time.Time) (first, last string) {
	return defaultRules.Window(now)
}

// ValidateSlot applies the booking rules locally and returns the time as HH:MM:SS.
func ValidateSlot(date, tm string, peopleCount int, now time.Time) (string, error) {
	return defaultRules.Validate(date, tm, peopleCount, now)
}

// Book validates the slot, refuses when the restaurant has too few seats left or
// the caller already holds a reservation there that day, then submits it.
func (c *Client) Book(ctx context.Context, req ReservationRequest) (*Reservation, error) {
	normalized, err := ValidateSlot(req.Date, req.Time, req.PeopleCount, time.Now())
	if err != nil {
		return nil, err
	}
	req.Time = normalized

	mine, err := c.MyReservations(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range mine {
		if r.RestaurantID == req.RestaurantID && r.Date == req.Date {
			return nil, ErrAlreadyBooked
		}
	}

	remaining, err := c.Remaining(ctx, req.RestaurantID, req.Date, nil)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 || req.PeopleCount > remaining {
		return nil, ErrFullyBooked
	}
	return c.CreateReservation(ctx, req)
}

// Reschedule is Book for an existing reservation; its own party counts as free seats.
func (c *Client) Reschedule(ctx context.Context, existing ReservationDetail, req ReservationRequest) (*Reservation, error) {
	normalized, err := ValidateSlot(req.Date, req.Time, req.PeopleCount, time.Now())
	if err != nil {
		return nil, err
	}
	req.Time = normalized

	remaining, err := c.Remaining(ctx, existing.RestaurantID, req.Date, &existing)
	if err != nil {
		return nil, err
	}
	if req.PeopleCount > remaining {
		return nil, ErrFullyBooked
	}
	return c.UpdateReservation(ctx, existing.ID, req)
}
