package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/internal/pool/infra/persistence"
)

func validPoolSpec(name string) domain.PoolSpec {
	now := time.Now().UTC()
	return domain.PoolSpec{
		Name:          name,
		TotalCapacity: dec("100"),
		InterestRate:  dec("0.05"),
		StartDate:     now,
		EndDate:       now.AddDate(0, 6, 0),
	}
}

func TestCreatePool(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	cache := &memCache{}
	svc := NewPoolService(repo, cache)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, validPoolSpec("alpha"))
	require.NoError(t, err)
	require.NotZero(t, pool.ID)

	// 默认值：BTC、open、余额 0
	assert.Equal(t, domain.AssetBTC, pool.Asset)
	assert.Equal(t, domain.PoolStatusOpen, pool.Status)
	assert.True(t, pool.CurrentBalance.IsZero())
	assert.True(t, pool.TotalCapacity.Equal(dec("100")))

	// 落库可查
	fresh, err := repo.GetPoolByName(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, pool.ID, fresh.ID)

	// 创建后失效开放池缓存
	assert.Equal(t, 1, cache.dels)
}

func TestCreatePool_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	svc := NewPoolService(repo, &memCache{})
	ctx := context.Background()

	_, err := svc.CreatePool(ctx, validPoolSpec("alpha"))
	require.NoError(t, err)

	_, err = svc.CreatePool(ctx, validPoolSpec("alpha"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrDuplicatePoolName), "got %v", err)
}

func TestCreatePool_Validation(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	svc := NewPoolService(repo, &memCache{})
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name   string
		mutate func(*domain.PoolSpec)
	}{
		{"名字为空", func(s *domain.PoolSpec) { s.Name = "  " }},
		{"容量为负", func(s *domain.PoolSpec) { s.TotalCapacity = dec("-1") }},
		{"利率为负", func(s *domain.PoolSpec) { s.InterestRate = dec("-0.01") }},
		{"缺起始日期", func(s *domain.PoolSpec) { s.StartDate = time.Time{} }},
		{"缺结束日期", func(s *domain.PoolSpec) { s.EndDate = time.Time{} }},
		{"结束早于起始", func(s *domain.PoolSpec) { s.EndDate = now.AddDate(0, -1, 0) }},
		{"起止相同", func(s *domain.PoolSpec) { s.EndDate = s.StartDate }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validPoolSpec("v-" + tt.name)
			tt.mutate(&spec)
			_, err := svc.CreatePool(ctx, spec)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.ErrValidationFailed), "got %v", err)
		})
	}

	// 零容量合法：池子可以建了再扩
	spec := validPoolSpec("zero-cap")
	spec.TotalCapacity = dec("0")
	pool, err := svc.CreatePool(ctx, spec)
	require.NoError(t, err)
	assert.True(t, pool.TotalCapacity.IsZero())
}

func TestCreatePool_TrimsName(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	svc := NewPoolService(repo, &memCache{})
	ctx := context.Background()

	spec := validPoolSpec("  alpha  ")
	pool, err := svc.CreatePool(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, "alpha", pool.Name)
}

func TestCreatePool_DuplicateNameWithSpaces(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	svc := NewPoolService(repo, &memCache{})
	ctx := context.Background()

	_, err := svc.CreatePool(ctx, validPoolSpec("alpha"))
	require.NoError(t, err)

	// 带空白的同名：查重和落库必须用同一个修剪后的名字，
	// 不允许漏过查重再撞唯一索引变成基础设施错误
	_, err = svc.CreatePool(ctx, validPoolSpec("  alpha  "))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrDuplicatePoolName), "got %v", err)
}
