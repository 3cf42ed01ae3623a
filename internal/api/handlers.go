package api

import (
	"context"

	"reservation-service/internal/entity"
	"reservation-service/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	ParseToken(token string) (service.Identity, error)
}

type RestaurantService interface {
	List(ctx context.Context) ([]entity.Restaurant, error)
	Get(ctx context.Context, id int64) (*entity.Restaurant, error)
	Availability(ctx context.Context, restaurantID int64, date string) (*entity.Availability, error)
}

type ReservationService interface {
	Create(ctx context.Context, userID, restaurantID int64, date, tm string, peopleCount int) (*entity.Reservation, error)
	Update(ctx context.Context, reservationID, userID int64, date, tm string, peopleCount int) (*entity.Reservation, error)
	Delete(ctx context.Context, reservationID, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]entity.ReservationDetail, error)
	ExportForUser(ctx context.Context, userID int64) ([]byte, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}
