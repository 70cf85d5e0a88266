package geocode

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"taxifare.predict.org/internal/models"
)

var grandCentral = Result{
	Coordinates: models.Coordinates{Lat: 40.7527262, Lon: -73.9772294},
	DisplayName: "Grand Central Terminal",
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache(2)
	c.now = func() time.Time { return now }

	if _, ok, _ := c.Get(ctx, "89 e 42nd st, new york"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set(ctx, "89 e 42nd st, new york", grandCentral, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "89 e 42nd st, new york")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != grandCentral {
		t.Errorf("unexpected cached value %+v", got)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, "89 e 42nd st, new york"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCacheCapacity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache(2)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "a", grandCentral, time.Minute)
	_ = c.Set(ctx, "b", grandCentral, time.Hour)
	_ = c.Set(ctx, "c", grandCentral, time.Hour)
	if _, ok, _ := c.Get(ctx, "c"); ok {
		t.Error("expected full cache to skip a new entry")
	}

	now = now.Add(10 * time.Minute)
	_ = c.Set(ctx, "c", grandCentral, time.Hour)
	if _, ok, _ := c.Get(ctx, "c"); !ok {
		t.Error("expected expired entry to be purged to make room")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client)

	if _, ok, err := c.Get(ctx, "89 e 42nd st, new york"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "89 e 42nd st, new york", grandCentral, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !mr.Exists("taxifare:geocode:89 e 42nd st, new york") {
		t.Fatal("expected key under the taxifare:geocode: prefix")
	}
	if ttl := mr.TTL("taxifare:geocode:89 e 42nd st, new york"); ttl != time.Hour {
		t.Errorf("expected TTL of 1h, got %v", ttl)
	}

	got, ok, err := c.Get(ctx, "89 e 42nd st, new york")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != grandCentral {
		t.Errorf("unexpected cached value %+v", got)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := c.Get(ctx, "89 e 42nd st, new york"); ok {
		t.Error("expected key to expire")
	}
}

func TestRedisCacheCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := mr.Set("taxifare:geocode:broken", "{not json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, _, err := NewRedisCache(client).Get(context.Background(), "broken"); err == nil {
		t.Error("expected decode error for a corrupt value")
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	if _, _, err := NewRedisCache(client).Get(context.Background(), "anything"); err == nil {
		t.Error("expected an error when redis is down")
	}
}
