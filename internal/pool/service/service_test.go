package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/internal/pool/infra/persistence"
	"btcfund.com/pkg/logger"
)

func TestMain(m *testing.M) {
	// 测试不需要真日志
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newTestDB 内存 SQLite；内存库必须单连接，多连接会各开各的库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

// memCache Cache 的内存实现，测试里顺便观察命中/失效行为
type memCache struct {
	mu    sync.Mutex
	pools []domain.Pool
	has   bool
	sets  int
	dels  int
}

func (m *memCache) GetOpenPools(ctx context.Context) ([]domain.Pool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return nil, false, nil
	}
	out := make([]domain.Pool, len(m.pools))
	copy(out, m.pools)
	return out, true, nil
}

func (m *memCache) SetOpenPools(ctx context.Context, pools []domain.Pool, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools = make([]domain.Pool, len(pools))
	copy(m.pools, pools)
	m.has = true
	m.sets++
	return nil
}

func (m *memCache) DelOpenPools(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools = nil
	m.has = false
	m.dels++
	return nil
}

// mustCreatePool 建一个 open 状态的测试池
func mustCreatePool(t *testing.T, repo domain.LedgerStore, name string, capacity int64) *domain.Pool {
	t.Helper()
	now := time.Now().UTC()
	pool := &domain.Pool{
		Name:           name,
		Asset:          domain.AssetBTC,
		TotalCapacity:  decimal.NewFromInt(capacity),
		CurrentBalance: decimal.Zero,
		InterestRate:   decimal.RequireFromString("0.05"),
		StartDate:      now,
		EndDate:        now.AddDate(0, 6, 0),
		Status:         domain.PoolStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.CreatePool(context.Background(), pool))
	return pool
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
