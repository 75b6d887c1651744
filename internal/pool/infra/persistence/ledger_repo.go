package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/pkg/xerr"
)

// AppendTransaction 只追加，账本不允许 update/delete
func (r *Repo) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	if err := r.getDb(ctx).WithContext(ctx).Create(t).Error; err != nil {
		return xerr.New(xerr.DbError, fmt.Sprintf("append transaction failed: %v", err))
	}
	return nil
}

// ListTransactions 最新的在前面
func (r *Repo) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	if userID == 0 {
		return []domain.Transaction{}, nil
	}
	var rows []domain.Transaction
	err := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("user_id = ?", userID).
		Order("transaction_date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("list transactions failed: %v", err))
	}
	return rows, nil
}

// SumPoolLedger completed 的 DEPOSIT 减 WITHDRAW，账本净额
func (r *Repo) SumPoolLedger(ctx context.Context, poolID int64) (decimal.Decimal, error) {
	var out struct {
		Net decimal.Decimal `gorm:"column:net"`
	}
	err := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0) AS net", domain.TxDeposit).
		Where("pool_id = ? AND status = ? AND type IN ?",
			poolID, domain.TxCompleted, []domain.TxType{domain.TxDeposit, domain.TxWithdraw}).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, xerr.New(xerr.DbError, fmt.Sprintf("sum pool ledger failed: %v", err))
	}
	return out.Net, nil
}

// SumPortfolioLedger 按 user 分组的净额
func (r *Repo) SumPortfolioLedger(ctx context.Context, poolID int64) ([]domain.LedgerNet, error) {
	var rows []struct {
		UserID int64           `gorm:"column:user_id"`
		Net    decimal.Decimal `gorm:"column:net"`
	}
	err := r.getDb(ctx).WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("user_id, COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0) AS net", domain.TxDeposit).
		Where("pool_id = ? AND status = ? AND type IN ?",
			poolID, domain.TxCompleted, []domain.TxType{domain.TxDeposit, domain.TxWithdraw}).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, xerr.New(xerr.DbError, fmt.Sprintf("sum portfolio ledger failed: %v", err))
	}

	out := make([]domain.LedgerNet, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LedgerNet{UserID: row.UserID, Net: row.Net})
	}
	return out, nil
}
