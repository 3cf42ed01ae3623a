package api

import (
	"context"
	"errors"
	"sort"
	"sync"

	"reservation-service/internal/entity"
	"reservation-service/internal/repository"
)

type memoryStore struct {
	mu           sync.Mutex
	users        map[string]entity.User
	restaurants  map[int64]entity.Restaurant
	reservations map[int64]entity.Reservation
	nextUser     int64
	nextRes      int64
}

func newMemoryStore(restaurants ...entity.Restaurant) *memoryStore {
	s := &memoryStore{
		users:        map[string]entity.User{},
		restaurants:  map[int64]entity.Restaurant{},
		reservations: map[int64]entity.Reservation{},
	}
	for _, r := range restaurants {
		s.restaurants[r.ID] = r
	}
	return s
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *memoryStore) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return nil, repository.ErrDuplicate
	}
	s.nextUser++
	user.ID = s.nextUser
	s.users[user.Email] = *user
	return user, nil
}

func (s *memoryStore) GetRestaurants(context.Context) ([]entity.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Restaurant{}
	for _, r := range s.restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryStore) GetRestaurantByID(_ context.Context, id int64) (*entity.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *memoryStore) GetAvailability(_ context.Context, restaurantID int64, date string) (*entity.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.restaurants[restaurantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := &entity.Availability{Limit: r.DailyLimit}
	for _, res := range s.reservations {
		if res.RestaurantID == restaurantID && res.Date == date {
			a.Reserved += res.PeopleCount
		}
	}
	return a, nil
}

func (s *memoryStore) admit(res *entity.Reservation) error {
	r, ok := s.restaurants[res.RestaurantID]
	if !ok {
		return repository.ErrNotFound
	}
	reserved := 0
	for _, other := range s.reservations {
		if other.ID == res.ID || other.RestaurantID != res.RestaurantID || other.Date != res.Date {
			continue
		}
		if other.UserID == res.UserID {
			return repository.ErrDuplicate
		}
		reserved += other.PeopleCount
	}
	if reserved+res.PeopleCount > r.DailyLimit {
		return repository.ErrCapacityExceeded
	}
	return nil
}

func (s *memoryStore) CreateReservation(_ context.Context, res *entity.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.admit(res); err != nil {
		return err
	}
	s.nextRes++
	res.ID = s.nextRes
	s.reservations[res.ID] = *res
	return nil
}

func (s *memoryStore) UpdateReservation(_ context.Context, res *entity.Reservation) (*entity.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.reservations[res.ID]
	if !ok || prev.UserID != res.UserID {
		return nil, repository.ErrNotFound
	}
	res.RestaurantID = prev.RestaurantID
	if err := s.admit(res); err != nil {
		return nil, err
	}
	s.reservations[res.ID] = *res
	return &prev, nil
}

func (s *memoryStore) DeleteReservation(_ context.Context, id, userID int64) (*entity.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(s.reservations, id)
	return &r, nil
}

func (s *memoryStore) GetReservationsByUser(_ context.Context, userID int64) ([]entity.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.ReservationDetail{}
	for _, r := range s.reservations {
		if r.UserID != userID {
			continue
		}
		rt := s.restaurants[r.RestaurantID]
		out = append(out, entity.ReservationDetail{
			ID: r.ID, RestaurantID: r.RestaurantID, RestaurantName: rt.Name, RestaurantLocation: rt.Address,
			RestaurantDescription: rt.Description, Date: r.Date, Time: r.Time, PeopleCount: r.PeopleCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

var errDown = errors.New("connection refused")
