package service

import (
	"context"
	"time"

	"reservation-service/internal/entity"
)

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
}

type RestaurantRepository interface {
	GetRestaurants(ctx context.Context) ([]entity.Restaurant, error)
	GetRestaurantByID(ctx context.Context, id int64) (*entity.Restaurant, error)
	GetAvailability(ctx context.Context, restaurantID int64, date string) (*entity.Availability, error)
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, res *entity.Reservation) error
	UpdateReservation(ctx context.Context, res *entity.Reservation) (*entity.Reservation, error)
	DeleteReservation(ctx context.Context, id, userID int64) (*entity.Reservation, error)
	GetReservationsByUser(ctx context.Context, userID int64) ([]entity.ReservationDetail, error)
}

// Cache is satisfied by cache.RedisCache and cache.NopCache.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher is satisfied by events.KafkaPublisher and events.LogPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.ReservationEvent) error
}
