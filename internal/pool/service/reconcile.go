package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/pkg/logger"
	"btcfund.com/pkg/metrics"
)

// ReconcileService 对账：账本是余额的最终事实
// 三笔写在同一个事务里，正常情况下不会有漂移；
// 对账兜住的是历史数据、人工改库这类事务外的破坏
type ReconcileService struct {
	repo domain.LedgerStore
}

func NewReconcileService(repo domain.LedgerStore) *ReconcileService {
	return &ReconcileService{repo: repo}
}

// PortfolioRepair 一条持仓修复记录
type PortfolioRepair struct {
	UserID   int64           `json:"userId"`
	Stored   decimal.Decimal `json:"stored"`
	Expected decimal.Decimal `json:"expected"`
}

// ReconcileReport 单个池子的对账结果
type ReconcileReport struct {
	PoolID           int64             `json:"poolId"`
	LedgerBalance    decimal.Decimal   `json:"ledgerBalance"`
	StoredBalance    decimal.Decimal   `json:"storedBalance"`
	PoolRepaired     bool              `json:"poolRepaired"`
	PortfolioRepairs []PortfolioRepair `json:"portfolioRepairs"`
}

// Reconcile 按账本重算一个池子的余额和全部持仓
func (s *ReconcileService) Reconcile(ctx context.Context, poolID int64) (*ReconcileReport, error) {
	pool, err := s.repo.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, domain.Errf(domain.ErrPoolNotFound, "pool %d not found", poolID)
	}

	now := time.Now().UTC()
	report := &ReconcileReport{PoolID: poolID, PortfolioRepairs: []PortfolioRepair{}}

	err = s.repo.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 池子余额 vs 账本净额
		ledgerNet, err := s.repo.SumPoolLedger(txCtx, poolID)
		if err != nil {
			return err
		}
		report.LedgerBalance = ledgerNet
		report.StoredBalance = pool.CurrentBalance

		if !pool.CurrentBalance.Equal(ledgerNet) {
			if err := s.repo.OverwritePoolBalance(txCtx, poolID, ledgerNet, now); err != nil {
				return err
			}
			report.PoolRepaired = true
			metrics.ReconcileDriftTotal.WithLabelValues("pool").Inc()
			logger.Warn(txCtx, "对账修复池子余额",
				zap.Int64("pool", poolID),
				zap.String("stored", pool.CurrentBalance.String()),
				zap.String("ledger", ledgerNet.String()),
			)
		}

		// 2. 持仓 vs 账本分组净额，两边取并集
		nets, err := s.repo.SumPortfolioLedger(txCtx, poolID)
		if err != nil {
			return err
		}
		expected := make(map[int64]decimal.Decimal, len(nets))
		for _, n := range nets {
			expected[n.UserID] = n.Net
		}

		rows, err := s.repo.ListPoolPortfolios(txCtx, poolID)
		if err != nil {
			return err
		}
		seen := make(map[int64]bool, len(rows))
		for _, row := range rows {
			seen[row.UserID] = true
			want, ok := expected[row.UserID]
			if !ok {
				want = decimal.Zero
			}
			if !row.AmountInvested.Equal(want) {
				if err := s.repo.OverwritePortfolioStake(txCtx, row.UserID, poolID, want, now); err != nil {
					return err
				}
				report.PortfolioRepairs = append(report.PortfolioRepairs, PortfolioRepair{
					UserID: row.UserID, Stored: row.AmountInvested, Expected: want,
				})
				metrics.ReconcileDriftTotal.WithLabelValues("portfolio").Inc()
			}
		}
		// 账本里有但持仓行丢了的用户，补行
		for uid, want := range expected {
			if seen[uid] {
				continue
			}
			if err := s.repo.OverwritePortfolioStake(txCtx, uid, poolID, want, now); err != nil {
				return err
			}
			report.PortfolioRepairs = append(report.PortfolioRepairs, PortfolioRepair{
				UserID: uid, Stored: decimal.Zero, Expected: want,
			})
			metrics.ReconcileDriftTotal.WithLabelValues("portfolio").Inc()
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// ReconcileAll 全量对账，逐池处理
func (s *ReconcileService) ReconcileAll(ctx context.Context) ([]ReconcileReport, error) {
	pools, err := s.repo.ListPools(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]ReconcileReport, 0, len(pools))
	for _, p := range pools {
		r, err := s.Reconcile(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, nil
}
