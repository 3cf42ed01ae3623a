package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"reservation-service/internal/config"
)

const serviceName = "reservation-service"

type Services struct {
	Auth         AuthService
	Restaurants  RestaurantService
	Reservations ReservationService
	DB           Pinger
}

// NewRouter builds the echo instance with middleware and all routes registered.
func NewRouter(cfg *config.Config, svc Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewCustomValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.RateLimit > 0 {
		e.Use(rateLimiter(cfg.RateLimit, cfg.RateBurst))
	}

	authHandler := NewAuthHandler(svc.Auth)
	restaurantHandler := NewRestaurantHandler(svc.Restaurants)
	reservationHandler := NewReservationHandler(svc.Reservations)

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "backend is running")
	})

	g := e.Group("/api")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)

	g.GET("/restaurants", restaurantHandler.GetRestaurants)
	g.GET("/restaurants/:id", restaurantHandler.GetRestaurant)
	g.GET("/restaurants/:id/availability", restaurantHandler.GetAvailability)

	reservations := g.Group("/reservations", VerifyToken(svc.Auth))
	reservations.POST("", reservationHandler.CreateReservation)
	reservations.PUT("/:id", reservationHandler.UpdateReservation)
	reservations.DELETE("/:id", reservationHandler.DeleteReservation)
	reservations.GET("/user", reservationHandler.GetUserReservations)
	reservations.GET("/user/export", reservationHandler.ExportUserReservations)

	g.GET("/health", healthHandler(svc.DB))

	return e
}

func healthHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "ok", http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Error().Err(err).Msg("health check: database unreachable")
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		return c.JSON(code, map[string]interface{}{
			"status":  status,
			"service": serviceName,
			"time":    time.Now().Format(time.RFC3339),
		})
	}
}
