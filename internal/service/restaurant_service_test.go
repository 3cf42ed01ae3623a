package service

import (
	"context"
	"errors"
	"testing"

	"reservation-service/internal/entity"
)

func TestRestaurantService(t *testing.T) {
	ctx := context.Background()
	repo := &MockRestaurantRepository{
		restaurants: []entity.Restaurant{
			{ID: 1, Name: "Bistro", Address: "Main St 1", DailyLimit: 30},
			{ID: 2, Name: "Trattoria", Address: "Side St 2", DailyLimit: 0},
		},
		reserved: map[string]int{"2026-10-18": 12},
	}
	s := NewRestaurantService(repo, newMemoryCache())

	t.Run("list is cached", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			list, err := s.List(ctx)
			if err != nil || len(list) != 2 {
				t.Fatalf("List() = %v, %v", list, err)
			}
		}
		if repo.calls != 1 {
			t.Errorf("repository called %d times, want 1", repo.calls)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		if _, err := s.Get(ctx, 42); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	tests := []struct {
		name     string
		id       int64
		date     string
		want     entity.Availability
		wantKind error
	}{
		{name: "booked day", id: 1, date: "2026-10-18", want: entity.Availability{Limit: 30, Reserved: 12}},
		{name: "empty day", id: 1, date: "2026-10-19", want: entity.Availability{Limit: 30}},
		{name: "closed restaurant", id: 2, date: "2026-10-19", want: entity.Availability{Limit: 0}},
		{name: "bad date", id: 1, date: "tomorrow", wantKind: ErrValidation},
		{name: "unknown restaurant", id: 42, date: "2026-10-18", wantKind: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Availability(ctx, tt.id, tt.date)
			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("Availability() error = %v, want %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Availability() unexpected error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("Availability() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
