package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"btcfund.com/internal/pool/domain"
)

// InvestmentProfile 用户投资概览，纯聚合，不落任何写
type InvestmentProfile struct {
	TotalPoolsInvested                int               `json:"totalPoolsInvested"`
	Investments                       []InvestmentEntry `json:"investments"`
	TotalAmountInvestedAcrossAllPools decimal.Decimal   `json:"totalAmountInvestedAcrossAllPools"`
}

type InvestmentEntry struct {
	PoolID             int64           `json:"poolId"`
	AmountInvested     decimal.Decimal `json:"amountInvested"`
	LastDepositDate    time.Time       `json:"lastDepositDate"`
	LastWithdrawalDate *time.Time      `json:"lastWithdrawalDate,omitempty"`
}

// QueryService 只读查询，全部幂等
type QueryService struct {
	repo  domain.LedgerStore
	cache Cache
	sf    singleflight.Group
	ttl   time.Duration
}

func NewQueryService(repo domain.LedgerStore, cache Cache) *QueryService {
	return &QueryService{
		repo:  repo,
		cache: cache,
		ttl:   30 * time.Second,
	}
}

// ListOpenPools 开放中的 BTC 池子，按名字升序
// 缓存 + singleflight 防击穿；缓存失效后同一时刻只有一个请求打 DB
func (q *QueryService) ListOpenPools(ctx context.Context) ([]domain.Pool, error) {
	if q.cache != nil {
		if pools, ok, err := q.cache.GetOpenPools(ctx); err == nil && ok {
			return pools, nil
		}
	}

	v, err, _ := q.sf.Do(openPoolsKey, func() (interface{}, error) {
		pools, err := q.repo.ListOpenPools(ctx, domain.AssetBTC)
		if err != nil {
			return nil, err
		}
		if q.cache != nil {
			_ = q.cache.SetOpenPools(ctx, pools, q.ttl)
		}
		return pools, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Pool), nil
}

// TransactionHistory 用户全部账本记录，最新在前
func (q *QueryService) TransactionHistory(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	return q.repo.ListTransactions(ctx, userID)
}

// GetInvestmentProfile 逐仓汇总，0 持仓的行也算一个池子
func (q *QueryService) GetInvestmentProfile(ctx context.Context, userID int64) (*InvestmentProfile, error) {
	rows, err := q.repo.ListPortfolios(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	investments := make([]InvestmentEntry, 0, len(rows))
	for _, row := range rows {
		total = total.Add(row.AmountInvested)
		investments = append(investments, InvestmentEntry{
			PoolID:             row.PoolID,
			AmountInvested:     row.AmountInvested,
			LastDepositDate:    row.LastDepositDate,
			LastWithdrawalDate: row.LastWithdrawalDate,
		})
	}

	return &InvestmentProfile{
		TotalPoolsInvested:                len(rows),
		Investments:                       investments,
		TotalAmountInvestedAcrossAllPools: total,
	}, nil
}
