package redis

import (
	"testing"
	"time"

	"github.com/tru-distribution/orderdesk-backend/pkg/config"
)

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.ImportProgressKey("abc"); got != "od:import_progress:abc" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := c.buildKey("a", "", "b"); got != "od:a:b" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "localhost:6379",
		PoolSize:    5,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %s", opts.Addr)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("expected pool size applied, got %d", opts.PoolSize)
	}
}

func TestOptionsFromConfigURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
