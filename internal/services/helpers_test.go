package services

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/models"
	"github.com/stitts-dev/golf-caddie/pkg/database"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memoryCache stores JSON like CacheService does, without expiry.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type mockStatsSource struct {
	mock.Mock
}

func (m *mockStatsSource) LoadClubStats(ctx context.Context, playerID, clubID string) (*caddie.ClubDistanceStats, error) {
	args := m.Called(ctx, playerID, clubID)
	stats, _ := args.Get(0).(*caddie.ClubDistanceStats)
	return stats, args.Error(1)
}

func testStats(club string, samples int, carry float64) *caddie.ClubDistanceStats {
	stats := &caddie.ClubDistanceStats{
		Club:           club,
		Samples:        samples,
		BaselineCarryM: carry,
		LastUpdated:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	if samples > 1 {
		std := 6.0
		stats.CarryStdM = &std
	}
	return stats
}
