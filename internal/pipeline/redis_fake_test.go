package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/saaga0h/migration-detector/pkg/redis"
)

// fakeRedis is an in-memory stand-in for redis.Client, just enough to
// exercise WorkQueue and SegmentCache without a real Redis server.
type fakeRedis struct {
	zsets  map[string]map[string]float64
	hashes map[string]map[string]string
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		zsets:  make(map[string]map[string]float64),
		hashes: make(map[string]map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeRedis) HSet(ctx context.Context, key, field string, value interface{}) error {
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	h[field] = value.(string)
	return nil
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRedis) ZAdd(ctx context.Context, key string, score float64, member interface{}) error {
	z, ok := f.zsets[key]
	if !ok {
		z = make(map[string]float64)
		f.zsets[key] = z
	}
	z[member.(string)] = score
	return nil
}

func (f *fakeRedis) ZRem(ctx context.Context, key string, members ...interface{}) error {
	z, ok := f.zsets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(z, m.(string))
	}
	return nil
}

func (f *fakeRedis) ZCard(ctx context.Context, key string) (int64, error) {
	return int64(len(f.zsets[key])), nil
}

func (f *fakeRedis) ZRangeByScoreWithScores(ctx context.Context, key string, min, max float64) ([]redis.ZMember, error) {
	z := f.zsets[key]
	out := make([]redis.ZMember, 0, len(z))
	for member, score := range z {
		if score >= min && score <= max {
			out = append(out, redis.ZMember{Score: score, Member: member})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out, nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Close() error                   { return nil }

var _ redis.Client = (*fakeRedis)(nil)
