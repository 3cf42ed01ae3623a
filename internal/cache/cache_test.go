package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"reservation-service/internal/config"
	"reservation-service/internal/entity"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"restaurant", RestaurantKey(3), "restaurant:3"},
		{"availability", AvailabilityKey(3, "2026-10-18"), "availability:3:2026-10-18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("key = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var c NopCache
	if err := c.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	var v int
	found, err := c.Get(ctx, "k", &v)
	if err != nil || found {
		t.Errorf("Get() = %v, %v; want miss", found, err)
	}
}

// Runs against a live Redis when REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisClient() error = %v", err)
	}
	defer rdb.Close()

	c := NewRedisCache(rdb)
	key := AvailabilityKey(999999, "2000-01-01")
	want := entity.Availability{Limit: 10, Reserved: 4}
	if err := c.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got entity.Availability
	found, err := c.Get(ctx, key, &got)
	if err != nil || !found || got != want {
		t.Fatalf("Get() = %+v, %v, %v", got, found, err)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	found, _ = c.Get(ctx, key, &got)
	if found {
		t.Error("key still present after Delete")
	}
}
