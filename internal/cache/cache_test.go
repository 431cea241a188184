package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/visitcare/internal/config"
	"github.com/paiban/visitcare/pkg/constraint"
	"github.com/paiban/visitcare/pkg/model"
	"github.com/paiban/visitcare/pkg/validator"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.RedisConfig{Host: mr.Host(), Port: atoi(t, mr.Port()), PoolSize: 2}
	client := NewClient(cfg)
	defer client.Close()

	assert.NoError(t, Ping(context.Background(), client))
}

func TestTravelTimeStore(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	store := NewTravelTimeStore(client, "vc")

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, []model.TravelTimeEntry{
		{FromID: "c1", ToID: "c2", Minutes: 12},
		{FromID: "c_x", ToID: "c3", Minutes: 7},
	}))
	assert.Equal(t, "12", mr.HGet("vc:travel_times", "from_c1_to_c2"))

	// 非法字段被跳过
	mr.HSet("vc:travel_times", "garbage", "5")

	lookup, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	m, ok := lookup.Minutes("c2", "c1")
	assert.True(t, ok)
	assert.Equal(t, 12, m)
	m, ok = lookup.Minutes("c_x", "c3")
	assert.True(t, ok)
	assert.Equal(t, 7, m)
	assert.Equal(t, 2, lookup.Len())

	// 覆盖写入
	require.NoError(t, store.Save(ctx, []model.TravelTimeEntry{{FromID: "c9", ToID: "c8", Minutes: 3}}))
	lookup, _, err = store.Load(ctx)
	require.NoError(t, err)
	_, ok = lookup.Minutes("c1", "c2")
	assert.False(t, ok)
}

func TestFindingsStore(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	store := NewFindingsStore(client, "vc", time.Minute)

	_, found, err := store.Get(ctx, "2026-02-10")
	require.NoError(t, err)
	assert.False(t, found)

	f := validator.Findings{
		"o1": {{OrderID: "o1", StaffID: "s1", Type: constraint.RuleNGStaff, Severity: constraint.SeverityError, Message: "NG"}},
	}
	require.NoError(t, store.Set(ctx, "2026-02-10", f))

	got, found, err := store.Get(ctx, "2026-02-10")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.HasErrors("o1"))
	assert.Equal(t, time.Minute, mr.TTL("vc:findings:2026-02-10"))

	t.Run("空结果也会缓存", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "2026-02-11", nil))
		got, found, err := store.Get(ctx, "2026-02-11")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, got)
	})

	t.Run("过期后失效", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		_, found, err := store.Get(ctx, "2026-02-10")
		require.NoError(t, err)
		assert.False(t, found)
	})

	require.NoError(t, store.Set(ctx, "2026-02-12", f))
	require.NoError(t, store.Invalidate(ctx, "2026-02-12"))
	_, found, err = store.Get(ctx, "2026-02-12")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEventStream(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()
	es := NewEventStream(client, "vc:events", "refresher")

	require.NoError(t, es.EnsureGroup(ctx))
	require.NoError(t, es.EnsureGroup(ctx), "重复创建消费者组应被忽略")

	id, err := es.Publish(ctx, OrderEvent{OrderID: "o1", Date: "2026-02-10", Kind: EventMoved})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// 非法消息
	mr.XAdd("vc:events", "*", []string{"data", "{broken"})

	got, err := es.Read(ctx, "worker-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "2026-02-10", got[0].Event.Date)
	assert.Equal(t, EventMoved, got[0].Event.Kind)
	assert.NotZero(t, got[0].Event.At)

	require.NoError(t, es.Ack(ctx, got[0].ID))

	again, err := es.Read(ctx, "worker-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestEventStream_ReadPending(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	es := NewEventStream(client, "vc:events", "refresher")
	require.NoError(t, es.EnsureGroup(ctx))

	id, err := es.Publish(ctx, OrderEvent{Date: "2026-02-10", Kind: EventStatus})
	require.NoError(t, err)

	pending, err := es.ReadPending(ctx, "worker-1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "尚未投递的事件不在待确认列表中")

	got, err := es.Read(ctx, "worker-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// 未确认的事件可以重新读取
	pending, err = es.ReadPending(ctx, "worker-1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, EventStatus, pending[0].Event.Kind)

	require.NoError(t, es.Ack(ctx, id))
	pending, err = es.ReadPending(ctx, "worker-1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
