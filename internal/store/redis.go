package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisCounters implements Counters on Redis hashes. Every increment maps
// to HINCRBY and every batch runs inside one MULTI/EXEC pipeline, so
// concurrent writers converge without any application-level locking.
type RedisCounters struct {
	client *redis.Client
}

func NewRedisCounters(redisURL string) (*RedisCounters, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 3
	return &RedisCounters{client: redis.NewClient(opts)}, nil
}

// NewRedisCountersFromClient wires an existing client, used by tests.
func NewRedisCountersFromClient(client *redis.Client) *RedisCounters {
	return &RedisCounters{client: client}
}

func (s *RedisCounters) Apply(ctx context.Context, b Batch) (map[string]int64, error) {
	pipe := s.client.TxPipeline()

	for _, inc := range b.Increments {
		pipe.HIncrBy(ctx, inc.Table, inc.Field, inc.Delta)
	}
	lenCmds := make(map[string]*redis.IntCmd, len(b.Logs))
	for _, entry := range b.Logs {
		pipe.HSetNX(ctx, entry.Table, entry.Key, entry.Value)
		lenCmds[entry.Table] = pipe.HLen(ctx, entry.Table)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, unavailable("apply batch", err)
	}

	logLens := make(map[string]int64, len(lenCmds))
	for table, cmd := range lenCmds {
		logLens[table] = cmd.Val()
	}
	return logLens, nil
}

func (s *RedisCounters) ReadTable(ctx context.Context, table string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, table).Result()
	if err != nil {
		return nil, unavailable("read "+table, err)
	}
	return toCounts(raw), nil
}

func (s *RedisCounters) ReadTables(ctx context.Context, tables []string) (map[string]map[string]int64, error) {
	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.MapStringStringCmd, len(tables))
	for _, table := range tables {
		cmds[table] = pipe.HGetAll(ctx, table)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, unavailable("read tables", err)
	}

	out := make(map[string]map[string]int64, len(tables))
	for table, cmd := range cmds {
		out[table] = toCounts(cmd.Val())
	}
	return out, nil
}

func (s *RedisCounters) ReadLog(ctx context.Context, table string) (map[string]string, error) {
	raw, err := s.client.HGetAll(ctx, table).Result()
	if err != nil {
		return nil, unavailable("read log "+table, err)
	}
	return raw, nil
}

func (s *RedisCounters) ListTables(ctx context.Context, prefix string) ([]string, error) {
	var (
		tables []string
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, unavailable("list tables "+prefix, err)
		}
		tables = append(tables, keys...)
		cursor = next
		if cursor == 0 {
			return tables, nil
		}
	}
}

func (s *RedisCounters) TableLen(ctx context.Context, table string) (int64, error) {
	n, err := s.client.HLen(ctx, table).Result()
	if err != nil {
		return 0, unavailable("len "+table, err)
	}
	return n, nil
}

func (s *RedisCounters) TrimLog(ctx context.Context, table string, keep int) error {
	raw, err := s.client.HGetAll(ctx, table).Result()
	if err != nil {
		return unavailable("trim log "+table, err)
	}
	if len(raw) <= keep {
		return nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	// Log keys start with an ISO timestamp, so lexicographically greatest
	// means newest.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	stale := keys[keep:]
	if err := s.client.HDel(ctx, table, stale...).Err(); err != nil {
		return unavailable("trim log "+table, err)
	}
	return nil
}

func (s *RedisCounters) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *RedisCounters) Close() error {
	return s.client.Close()
}

func toCounts(raw map[string]string) map[string]int64 {
	counts := make(map[string]int64, len(raw))
	for field, v := range raw {
		var n int64
		_, _ = fmt.Sscanf(v, "%d", &n)
		counts[field] = n
	}
	return counts
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
