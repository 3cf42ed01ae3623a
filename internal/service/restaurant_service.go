package service

import (
	"context"
	"errors"
	"time"

	"reservation-service/internal/cache"
	"reservation-service/internal/entity"
	"reservation-service/internal/metrics"
	"reservation-service/internal/repository"
)

type RestaurantService struct {
	repo  RestaurantRepository
	cache Cache
}

// NewRestaurantService creates a new instance of RestaurantService.
func NewRestaurantService(repo RestaurantRepository, c Cache) *RestaurantService {
	return &RestaurantService{repo: repo, cache: c}
}

func (s *RestaurantService) List(ctx context.Context) ([]entity.Restaurant, error) {
	var restaurants []entity.Restaurant
	if s.lookup(ctx, cache.RestaurantsKey, &restaurants) {
		return restaurants, nil
	}

	restaurants, err := s.repo.GetRestaurants(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing restaurants")
		return nil, err
	}
	s.store(ctx, cache.RestaurantsKey, restaurants, cache.RestaurantsTTL)
	return restaurants, nil
}

func (s *RestaurantService) Get(ctx context.Context, id int64) (*entity.Restaurant, error) {
	key := cache.RestaurantKey(id)
	var restaurant entity.Restaurant
	if s.lookup(ctx, key, &restaurant) {
		return &restaurant, nil
	}

	found, err := s.repo.GetRestaurantByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "restaurant not found")
		}
		logger.Error().Err(err).Int64("restaurant_id", id).Msg("Error getting restaurant")
		return nil, err
	}
	s.store(ctx, key, found, cache.RestaurantsTTL)
	return found, nil
}

// Availability reports the daily limit and the guests already booked on date.
func (s *RestaurantService) Availability(ctx context.Context, restaurantID int64, date string) (*entity.Availability, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, newError(ErrValidation, "date must be YYYY-MM-DD")
	}

	key := cache.AvailabilityKey(restaurantID, date)
	var availability entity.Availability
	if s.lookup(ctx, key, &availability) {
		return &availability, nil
	}

	found, err := s.repo.GetAvailability(ctx, restaurantID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "restaurant not found")
		}
		logger.Error().Err(err).Int64("restaurant_id", restaurantID).Str("date", date).Msg("Error getting availability")
		return nil, err
	}
	s.store(ctx, key, found, cache.AvailabilityTTL)
	return found, nil
}

// lookup treats cache errors as misses.
func (s *RestaurantService) lookup(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Error reading cache")
		return false
	}
	metrics.IncCacheLookup(found)
	return found
}

func (s *RestaurantService) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Error writing cache")
	}
}
