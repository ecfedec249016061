package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/espalier-dev/espalier/pkg/ports"
)

func testStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client, opts...), srv
}

func record(bot, id string, at time.Time) ports.TurnRecord {
	return ports.TurnRecord{
		ID:        id,
		Bot:       bot,
		Locale:    "en_US",
		SessionID: "session-1",
		Intent:    "ReplaceCard",
		Source:    "DialogCodeHook",
		Step:      "zip",
		Directive: "ElicitSlot",
		At:        at,
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := record("ReplaceCard", fmt.Sprintf("turn-%d", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Append(ctx, rec))
	}

	recs, err := s.Recent(ctx, "ReplaceCard", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "turn-4", recs[0].ID)
	assert.Equal(t, "turn-3", recs[1].ID)
	assert.Equal(t, "turn-2", recs[2].ID)
	assert.Equal(t, "zip", recs[0].Step)
	assert.True(t, recs[0].At.Equal(base.Add(4*time.Second)))
}

func TestStore_RecentSkipsExpiredRecords(t *testing.T) {
	ctx := context.Background()
	s, srv := testStore(t, WithTTL(time.Minute))

	base := time.Now().UTC()
	require.NoError(t, s.Append(ctx, record("ReplaceCard", "old", base)))
	require.NoError(t, s.Append(ctx, record("ReplaceCard", "new", base.Add(time.Second))))

	// Expire only the record value, leaving the index entry behind.
	srv.Del(s.recordKey("old"))

	recs, err := s.Recent(ctx, "ReplaceCard", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].ID)
}

func TestStore_RecordsExpire(t *testing.T) {
	ctx := context.Background()
	s, srv := testStore(t, WithTTL(time.Minute))

	require.NoError(t, s.Append(ctx, record("ReplaceCard", "turn-1", time.Now().UTC())))
	srv.FastForward(2 * time.Minute)

	recs, err := s.Recent(ctx, "ReplaceCard", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStore_PrefixIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	s, srv := testStore(t, WithPrefix("other:"))

	require.NoError(t, s.Append(ctx, record("ReplaceCard", "turn-1", time.Now().UTC())))
	assert.True(t, srv.Exists("other:turn-1"))
	assert.True(t, srv.Exists("other:index:ReplaceCard"))
}

func TestStore_RecentEmptyBot(t *testing.T) {
	s, _ := testStore(t)

	recs, err := s.Recent(context.Background(), "NoSuchBot", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
