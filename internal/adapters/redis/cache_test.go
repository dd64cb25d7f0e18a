package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/domain"
)

func TestCache_SetGetDelAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.NewClient(mr.Addr(), "", 0)
	defer c.Close()
	cache := redisad.NewCache(c)
	ctx := context.Background()

	var got []domain.Hotel
	ok, err := cache.Get(ctx, "hotels:all", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := []domain.Hotel{{HotelID: "h1", City: "Rome", Rating: 4.5}}
	if err := cache.Set(ctx, "hotels:all", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = cache.Get(ctx, "hotels:all", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].HotelID != "h1" || got[0].Rating != 4.5 {
		t.Fatalf("unexpected cached value: %+v", got)
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := cache.Get(ctx, "hotels:all", &got); ok {
		t.Fatalf("expected expiry after TTL")
	}

	_ = cache.Set(ctx, "hotels:city:Rome", in, 60)
	if err := cache.Del(ctx, "hotels:city:Rome"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("hotels:city:Rome") {
		t.Fatalf("expected key to be deleted")
	}
}
