package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"reservation-service/internal/entity"
	"reservation-service/internal/repository"
)

// MockUserRepository keeps users in memory and enforces unique emails.
type MockUserRepository struct {
	mu     sync.Mutex
	users  map[string]entity.User
	nextID int64
	err    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: map[string]entity.User{}}
}

func (m *MockUserRepository) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *MockUserRepository) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return nil, repository.ErrDuplicate
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Email] = *user
	return user, nil
}

// MockReservationRepository applies the same rules as the SQL repository.
type MockReservationRepository struct {
	mu           sync.Mutex
	limits       map[int64]int
	names        map[int64]string
	reservations map[int64]entity.Reservation
	nextID       int64
}

func NewMockReservationRepository(limits map[int64]int) *MockReservationRepository {
	names := map[int64]string{}
	for id := range limits {
		names[id] = "Restaurant " + string(rune('A'+id-1))
	}
	return &MockReservationRepository{limits: limits, names: names, reservations: map[int64]entity.Reservation{}}
}

func (m *MockReservationRepository) check(res *entity.Reservation) error {
	limit, ok := m.limits[res.RestaurantID]
	if !ok {
		return repository.ErrNotFound
	}
	reserved := 0
	for _, r := range m.reservations {
		if r.ID == res.ID || r.RestaurantID != res.RestaurantID || r.Date != res.Date {
			continue
		}
		if r.UserID == res.UserID {
			return repository.ErrDuplicate
		}
		reserved += r.PeopleCount
	}
	if reserved+res.PeopleCount > limit {
		return repository.ErrCapacityExceeded
	}
	return nil
}

func (m *MockReservationRepository) CreateReservation(_ context.Context, res *entity.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(res); err != nil {
		return err
	}
	m.nextID++
	res.ID = m.nextID
	m.reservations[res.ID] = *res
	return nil
}

func (m *MockReservationRepository) UpdateReservation(_ context.Context, res *entity.Reservation) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.reservations[res.ID]
	if !ok || prev.UserID != res.UserID {
		return nil, repository.ErrNotFound
	}
	res.RestaurantID = prev.RestaurantID
	if err := m.check(res); err != nil {
		return nil, err
	}
	m.reservations[res.ID] = *res
	return &prev, nil
}

func (m *MockReservationRepository) DeleteReservation(_ context.Context, id, userID int64) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(m.reservations, id)
	return &r, nil
}

func (m *MockReservationRepository) GetReservationsByUser(_ context.Context, userID int64) ([]entity.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.ReservationDetail{}
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		out = append(out, entity.ReservationDetail{
			ID:             r.ID,
			RestaurantID:   r.RestaurantID,
			RestaurantName: m.names[r.RestaurantID],
			Date:           r.Date,
			Time:           r.Time,
			PeopleCount:    r.PeopleCount,
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

// MockRestaurantRepository counts calls so cache hits can be observed.
type MockRestaurantRepository struct {
	restaurants []entity.Restaurant
	reserved    map[string]int
	calls       int
}

func (m *MockRestaurantRepository) GetRestaurants(context.Context) ([]entity.Restaurant, error) {
	m.calls++
	return m.restaurants, nil
}

func (m *MockRestaurantRepository) GetRestaurantByID(_ context.Context, id int64) (*entity.Restaurant, error) {
	m.calls++
	for _, r := range m.restaurants {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRestaurantRepository) GetAvailability(_ context.Context, restaurantID int64, date string) (*entity.Availability, error) {
	m.calls++
	for _, r := range m.restaurants {
		if r.ID == restaurantID {
			return &entity.Availability{Limit: r.DailyLimit, Reserved: m.reserved[date]}, nil
		}
	}
	return nil, repository.ErrNotFound
}

// memoryCache ignores TTLs.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
