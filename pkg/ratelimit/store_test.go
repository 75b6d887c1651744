package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Allow(t *testing.T) {
	// rate 接近 0，burst 2：前两个请求过，第三个拒
	s := NewStore(0.0001, 2, time.Minute)

	assert.True(t, s.Allow("ip1:/api/pools"))
	assert.True(t, s.Allow("ip1:/api/pools"))
	assert.False(t, s.Allow("ip1:/api/pools"))

	// 不同 key 各自限各自的
	assert.True(t, s.Allow("ip2:/api/pools"))
}

func TestStore_JanitorEvicts(t *testing.T) {
	s := NewStore(1000, 2000, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx, 10*time.Millisecond)

	require.True(t, s.Allow("stale-key"))

	// 超过 ttl 没再命中的 key 要被清掉，map 不能无限膨胀
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, ok := s.entries["stale-key"]
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "janitor 没有清理过期 key")
}
