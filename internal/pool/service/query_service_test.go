package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/internal/pool/infra/persistence"
)

func TestListOpenPools_FilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	q := NewQueryService(repo, nil)
	ctx := context.Background()

	mustCreatePool(t, repo, "zeta", 100)
	mustCreatePool(t, repo, "alpha", 100)
	closed := mustCreatePool(t, repo, "beta", 100)
	require.NoError(t, db.Model(&domain.Pool{}).
		Where("id = ?", closed.ID).
		Update("status", domain.PoolStatusClosed).Error)

	pools, err := q.ListOpenPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2, "closed 的池子不在列表里")
	// 名字升序
	assert.Equal(t, "alpha", pools[0].Name)
	assert.Equal(t, "zeta", pools[1].Name)
	for _, p := range pools {
		assert.Equal(t, domain.PoolStatusOpen, p.Status)
		assert.Equal(t, domain.AssetBTC, p.Asset)
	}
}

func TestListOpenPools_CacheHit(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	cache := &memCache{}
	q := NewQueryService(repo, cache)
	ctx := context.Background()

	mustCreatePool(t, repo, "alpha", 100)

	// 第一次未命中，回填缓存
	pools, err := q.ListOpenPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, 1, cache.sets)

	// 命中后不再打 DB：直接改库，读到的还是缓存里的旧值
	mustCreatePool(t, repo, "beta", 100)
	pools, err = q.ListOpenPools(ctx)
	require.NoError(t, err)
	assert.Len(t, pools, 1, "命中缓存时不应该看到新池子")
	assert.Equal(t, 1, cache.sets)

	// 失效后回源
	require.NoError(t, cache.DelOpenPools(ctx))
	pools, err = q.ListOpenPools(ctx)
	require.NoError(t, err)
	assert.Len(t, pools, 2)
}

func TestTransactionHistory(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	svc := NewBalanceService(repo, &memCache{})
	q := NewQueryService(repo, nil)
	ctx := context.Background()

	p1 := mustCreatePool(t, repo, "alpha", 100)
	p2 := mustCreatePool(t, repo, "beta", 100)

	_, err := svc.Deposit(ctx, 1, p1.ID, dec("10"))
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, 1, p2.ID, dec("20"))
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, 1, p1.ID, dec("5"))
	require.NoError(t, err)
	// 别的用户的记录不混进来
	_, err = svc.Deposit(ctx, 2, p1.ID, dec("7"))
	require.NoError(t, err)

	history, err := q.TransactionHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// 最新在前
	for i := 0; i < len(history)-1; i++ {
		cur, next := history[i], history[i+1]
		ok := cur.TransactionDate.After(next.TransactionDate) ||
			(cur.TransactionDate.Equal(next.TransactionDate) && cur.ID > next.ID)
		assert.True(t, ok, "history[%d] 应该不早于 history[%d]", i, i+1)
	}
	for _, tx := range history {
		assert.Equal(t, int64(1), tx.UserID)
		assert.True(t, tx.Amount.Sign() > 0, "账本金额恒为正")
	}

	// 没记录的用户拿空列表，不报错
	history, err = q.TransactionHistory(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetInvestmentProfile(t *testing.T) {
	db := newTestDB(t)
	repo := persistence.New(db)
	svc := NewBalanceService(repo, &memCache{})
	q := NewQueryService(repo, nil)
	ctx := context.Background()

	p1 := mustCreatePool(t, repo, "alpha", 100)
	p2 := mustCreatePool(t, repo, "beta", 100)

	_, err := svc.Deposit(ctx, 1, p1.ID, dec("10"))
	require.NoError(t, err)
	_, err = svc.Deposit(ctx, 1, p2.ID, dec("20"))
	require.NoError(t, err)
	// p1 清仓到 0，行保留
	_, err = svc.Withdraw(ctx, 1, p1.ID, dec("10"))
	require.NoError(t, err)

	profile, err := q.GetInvestmentProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.TotalPoolsInvested, "清仓到 0 的池子也算一个")
	assert.True(t, profile.TotalAmountInvestedAcrossAllPools.Equal(dec("20")))
	require.Len(t, profile.Investments, 2)

	byPool := make(map[int64]InvestmentEntry, 2)
	for _, e := range profile.Investments {
		byPool[e.PoolID] = e
	}
	assert.True(t, byPool[p1.ID].AmountInvested.Equal(dec("0")))
	assert.NotNil(t, byPool[p1.ID].LastWithdrawalDate)
	assert.True(t, byPool[p2.ID].AmountInvested.Equal(dec("20")))
	assert.Nil(t, byPool[p2.ID].LastWithdrawalDate)

	// 没投资过的用户拿全零概览
	profile, err = q.GetInvestmentProfile(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.TotalPoolsInvested)
	assert.Empty(t, profile.Investments)
	assert.True(t, profile.TotalAmountInvestedAcrossAllPools.IsZero())
}
