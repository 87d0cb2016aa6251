package service

import (
	"context"
	"testing"
	"time"

	"taxquery/assistant"
	"taxquery/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTurns struct {
	rows []models.ConversationTurn
}

func (m *memTurns) Append(_ context.Context, turns ...models.ConversationTurn) error {
	m.rows = append(m.rows, turns...)
	return nil
}

func (m *memTurns) List(_ context.Context, sessionID string) ([]models.ConversationTurn, error) {
	var out []models.ConversationTurn
	for _, r := range m.rows {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func reply(text string) func(h *assistant.History) assistant.Answer {
	return func(h *assistant.History) assistant.Answer {
		h.Append(models.RoleHuman, "q", assistant.RouteDatabase)
		h.Append(models.RoleAssistant, text, assistant.RouteDatabase)
		return assistant.Answer{Text: text, Route: assistant.RouteDatabase}
	}
}

func TestSessionStore_NewSession(t *testing.T) {
	store := NewSessionStore(nil, nil, nil)
	ctx := context.Background()

	id, ans, err := store.Do(ctx, "", reply("a1"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "a1", ans.Text)

	_, _, err = store.Do(ctx, id, reply("a2"))
	require.NoError(t, err)

	turns, err := store.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	assert.Equal(t, assistant.Greeting, turns[0].Content)
	assert.Equal(t, "a2", turns[4].Content)

	_, err = store.History(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_RejectsConcurrentTurn(t *testing.T) {
	store := NewSessionStore(NewMemoryLocker(), nil, nil)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, _, err := store.Do(ctx, "s1", func(h *assistant.History) assistant.Answer {
			close(started)
			<-release
			return assistant.Answer{}
		})
		done <- err
	}()

	<-started
	_, _, err := store.Do(ctx, "s1", reply("second"))
	assert.ErrorIs(t, err, ErrSessionBusy)

	// 其他会话不受影响
	_, _, err = store.Do(ctx, "s2", reply("other"))
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	_, _, err = store.Do(ctx, "s1", reply("third"))
	assert.NoError(t, err)
}

func TestSessionStore_HistoryDuringTurn(t *testing.T) {
	store := NewSessionStore(nil, nil, nil)
	ctx := context.Background()
	id, _, err := store.Do(ctx, "", reply("a0"))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_, _, _ = store.Do(ctx, id, reply("a"))
		}
	}()
	for i := 0; i < 200; i++ {
		turns, err := store.History(ctx, id)
		require.NoError(t, err)
		require.NotEmpty(t, turns)
		assert.Equal(t, assistant.Greeting, turns[0].Content)
	}
	<-done

	turns, err := store.History(ctx, id)
	require.NoError(t, err)
	assert.Len(t, turns, 1+2*201)
}

func TestSessionStore_PersistsAndRestores(t *testing.T) {
	turns := &memTurns{}
	ctx := context.Background()

	store := NewSessionStore(nil, turns, nil)
	_, _, err := store.Do(ctx, "s1", reply("a1"))
	require.NoError(t, err)
	require.Len(t, turns.rows, 3)
	for _, r := range turns.rows {
		assert.Equal(t, "s1", r.SessionID)
	}

	// 新进程从存储恢复
	restarted := NewSessionStore(nil, turns, nil)
	got, err := restarted.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, _, err = restarted.Do(ctx, "s1", reply("a2"))
	require.NoError(t, err)
	assert.Len(t, turns.rows, 5)
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	locker := NewRedisLocker(client, time.Minute)

	unlock, ok, err := locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("taxquery:session-lock:s1"))

	_, ok, err = locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()
	assert.False(t, mr.Exists("taxquery:session-lock:s1"))

	_, ok, err = locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	// TTL 到期后自动释放
	mr.FastForward(2 * time.Minute)
	_, ok, err = locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_UnlockKeepsForeignLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	locker := NewRedisLocker(client, time.Minute)
	unlock, ok, err := locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)

	// 锁过期后被其他实例拿走，旧持有者的 unlock 不应删除它
	mr.FastForward(2 * time.Minute)
	_, ok, err = locker.TryLock(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)

	unlock()
	assert.True(t, mr.Exists("taxquery:session-lock:s1"))
}

func TestRedisLocker_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	store := NewSessionStore(NewRedisLocker(client, time.Minute), nil, nil)
	_, _, err := store.Do(context.Background(), "s1", reply("x"))
	assert.ErrorIs(t, err, models.ErrServiceUnavailable)
}
