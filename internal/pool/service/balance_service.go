package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/pkg/logger"
	"btcfund.com/pkg/metrics"
	"btcfund.com/pkg/safe"
)

// BalanceService 资金引擎：池子余额、用户持仓、账本的三方联动
//
// 一次成功的存入/取出在同一个事务里落三笔写：
//  1. 池子余额条件自增 (容量上下限写进 UPDATE 谓词)
//  2. 持仓 find-or-create 增量更新 (非负下限写进谓词)
//  3. 追加一条 completed 账本记录
//
// 快照校验只负责给出准确的拒绝原因；并发安全靠谓词+事务，不靠快照。
type BalanceService struct {
	repo  domain.LedgerStore
	cache Cache
}

func NewBalanceService(repo domain.LedgerStore, cache Cache) *BalanceService {
	return &BalanceService{repo: repo, cache: cache}
}

// Deposit 存入池子
func (s *BalanceService) Deposit(ctx context.Context, userID, poolID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.Errf(domain.ErrInvalidAmount, "deposit amount must be positive, got %s", amount)
	}

	// 快照校验：fail fast，给出准确拒绝原因
	pool, err := s.repo.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, domain.Errf(domain.ErrPoolNotFound, "pool %d not found", poolID)
	}
	if pool.Status != domain.PoolStatusOpen {
		return nil, domain.Errf(domain.ErrPoolNotOpen, "pool is %s and cannot accept deposits", pool.Status)
	}
	if pool.CurrentBalance.Add(amount).GreaterThan(pool.TotalCapacity) {
		return nil, domain.Errf(domain.ErrCapacityExceeded,
			"deposit amount of %s %s exceeds pool capacity, current balance: %s, total capacity: %s",
			amount, pool.Asset, pool.CurrentBalance, pool.TotalCapacity)
	}

	now := time.Now().UTC()
	var record *domain.Transaction

	err = s.repo.Transaction(ctx, func(txCtx context.Context) error {
		// A. 池子余额条件自增
		applied, err := s.repo.IncrementPoolBalance(txCtx, poolID, amount, now)
		if err != nil {
			return err
		}
		if !applied {
			// 快照过了但谓词没过：并发把容量用掉了，重读定性
			return s.classifyPoolReject(txCtx, poolID, amount, true)
		}

		// B. 持仓 find-or-create 增量
		_, created, applied, err := s.repo.UpsertPortfolio(txCtx, userID, poolID, amount, domain.TouchDeposit, now)
		if err != nil {
			return err
		}
		if !applied {
			// 存入路径 delta 为正，谓词理论上永远满足，防御性兜底
			return domain.Errf(domain.ErrValidationFailed, "portfolio update rejected for user %d pool %d", userID, poolID)
		}
		if created {
			logger.Info(txCtx, "首次建仓",
				zap.Int64("uid", userID), zap.Int64("pool", poolID))
		}

		// C. 追加账本 (最后一步)
		record = &domain.Transaction{
			UserID:          userID,
			PoolID:          &poolID,
			Type:            domain.TxDeposit,
			Asset:           pool.Asset,
			Amount:          amount,
			TransactionDate: now,
			Status:          domain.TxCompleted,
			Description:     fmt.Sprintf("Deposit %s %s into pool %s", amount, pool.Asset, pool.Name),
			CreatedAt:       now,
		}
		return s.repo.AppendTransaction(txCtx, record)
	})

	if err != nil {
		if kind, ok := domain.KindOf(err); ok {
			metrics.RejectTotal.WithLabelValues("deposit", kind.String()).Inc()
		}
		return nil, err
	}

	s.invalidateOpenPools(ctx)
	metrics.DepositTotal.WithLabelValues(pool.Name).Inc()
	logger.Info(ctx, "存入成功",
		zap.Int64("uid", userID),
		zap.Int64("pool", poolID),
		zap.String("amount", amount.String()),
	)
	return record, nil
}

// Withdraw 从池子取出
func (s *BalanceService) Withdraw(ctx context.Context, userID, poolID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, domain.Errf(domain.ErrInvalidAmount, "withdrawal amount must be positive, got %s", amount)
	}

	pool, err := s.repo.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, domain.Errf(domain.ErrPoolNotFound, "pool %d not found", poolID)
	}
	if pool.Status != domain.PoolStatusOpen {
		return nil, domain.Errf(domain.ErrPoolNotOpen, "pool is %s and does not allow withdrawals", pool.Status)
	}
	if pool.CurrentBalance.LessThan(amount) {
		return nil, domain.Errf(domain.ErrInsufficientPoolBalance,
			"insufficient balance in pool, current balance: %s %s, requested: %s",
			pool.CurrentBalance, pool.Asset, amount)
	}

	// 池子够不代表用户够，两道校验各管各的
	portfolio, err := s.repo.GetPortfolio(ctx, userID, poolID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		return nil, domain.Errf(domain.ErrNoInvestment, "user %d has no investment in pool %d", userID, poolID)
	}
	if portfolio.AmountInvested.LessThan(amount) {
		return nil, domain.Errf(domain.ErrInsufficientPortfolioBalance,
			"insufficient invested amount in portfolio, current invested: %s %s, requested: %s",
			portfolio.AmountInvested, pool.Asset, amount)
	}

	now := time.Now().UTC()
	neg := amount.Neg()
	var record *domain.Transaction

	err = s.repo.Transaction(ctx, func(txCtx context.Context) error {
		applied, err := s.repo.IncrementPoolBalance(txCtx, poolID, neg, now)
		if err != nil {
			return err
		}
		if !applied {
			return s.classifyPoolReject(txCtx, poolID, amount, false)
		}

		_, _, applied, err = s.repo.UpsertPortfolio(txCtx, userID, poolID, neg, domain.TouchWithdraw, now)
		if err != nil {
			return err
		}
		if !applied {
			// 并发把持仓扣没了，按当前值重新定性
			return domain.Errf(domain.ErrInsufficientPortfolioBalance,
				"insufficient invested amount in portfolio, requested: %s", amount)
		}

		record = &domain.Transaction{
			UserID:          userID,
			PoolID:          &poolID,
			Type:            domain.TxWithdraw,
			Asset:           pool.Asset,
			Amount:          amount,
			TransactionDate: now,
			Status:          domain.TxCompleted,
			Description:     fmt.Sprintf("Withdraw %s %s from pool %s", amount, pool.Asset, pool.Name),
			CreatedAt:       now,
		}
		return s.repo.AppendTransaction(txCtx, record)
	})

	if err != nil {
		if kind, ok := domain.KindOf(err); ok {
			metrics.RejectTotal.WithLabelValues("withdraw", kind.String()).Inc()
		}
		return nil, err
	}

	s.invalidateOpenPools(ctx)
	metrics.WithdrawTotal.WithLabelValues(pool.Name).Inc()
	logger.Info(ctx, "取出成功",
		zap.Int64("uid", userID),
		zap.Int64("pool", poolID),
		zap.String("amount", amount.String()),
	)
	return record, nil
}

// classifyPoolReject 条件更新没生效时重读池子，给出准确的业务错误
// isDeposit=true 走存入语义，false 走取出语义
func (s *BalanceService) classifyPoolReject(ctx context.Context, poolID int64, amount decimal.Decimal, isDeposit bool) error {
	pool, err := s.repo.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if pool == nil {
		return domain.Errf(domain.ErrPoolNotFound, "pool %d not found", poolID)
	}
	if pool.Status != domain.PoolStatusOpen {
		return domain.Errf(domain.ErrPoolNotOpen, "pool is %s", pool.Status)
	}
	if isDeposit {
		return domain.Errf(domain.ErrCapacityExceeded,
			"deposit amount of %s exceeds pool capacity, current balance: %s, total capacity: %s",
			amount, pool.CurrentBalance, pool.TotalCapacity)
	}
	return domain.Errf(domain.ErrInsufficientPoolBalance,
		"insufficient balance in pool, current balance: %s, requested: %s",
		pool.CurrentBalance, amount)
}

// invalidateOpenPools 缓存双删：余额变了，列表里的 currentBalance 跟着变
func (s *BalanceService) invalidateOpenPools(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DelOpenPools(ctx)
	// 延迟删，把旧读回填再清一次；带上原 ctx，panic 日志里能留住链路信息
	safe.GoCtx(ctx, func(ctx context.Context) {
		time.Sleep(500 * time.Millisecond)
		// 请求 ctx 此时可能已经结束，删除用独立的超时
		delCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.cache.DelOpenPools(delCtx)
	})
}
