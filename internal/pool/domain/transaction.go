package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxDeposit        TxType = "DEPOSIT"
	TxWithdraw       TxType = "WITHDRAW"
	TxInterestPayout TxType = "INTEREST_PAYOUT" // 预留：利息发放不在本服务实现
)

type TxStatus string

const (
	TxCompleted TxStatus = "completed"
	TxPending   TxStatus = "pending"
	TxFailed    TxStatus = "failed"
)

// Transaction 不可变账本，append-only
// amount 恒为正数，方向由 type 表达，绝不用符号表达
type Transaction struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	UserID          int64           `gorm:"index;not null" json:"userId"`
	PoolID          *int64          `gorm:"index" json:"poolId,omitempty"` // 非池交易可以为空
	Type            TxType          `gorm:"size:20;not null" json:"type"`
	Asset           string          `gorm:"size:16;not null" json:"asset"`
	Amount          decimal.Decimal `gorm:"type:decimal(36,18);not null" json:"amount"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transactionDate"`
	Status          TxStatus        `gorm:"size:16;not null" json:"status"`
	ReferenceID     string          `gorm:"size:64" json:"referenceId,omitempty"`
	Description     string          `gorm:"size:255" json:"description,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// LedgerNet 账本聚合结果：某个用户在某个池子的净入金
type LedgerNet struct {
	UserID int64
	Net    decimal.Decimal
}

// LedgerRepo 账本仓储接口，只有追加和只读聚合
type LedgerRepo interface {
	AppendTransaction(ctx context.Context, t *Transaction) error
	// ListTransactions 按 transaction_date 倒序 (最新在前)
	ListTransactions(ctx context.Context, userID int64) ([]Transaction, error)

	// SumPoolLedger completed 的 DEPOSIT 减 WITHDRAW 的净额，账本是余额的最终事实
	SumPoolLedger(ctx context.Context, poolID int64) (decimal.Decimal, error)
	// SumPortfolioLedger 同上，按 user 分组
	SumPortfolioLedger(ctx context.Context, poolID int64) ([]LedgerNet, error)
}

// LedgerStore 三张表的聚合仓储，持久化层一个 Repo 全部实现
type LedgerStore interface {
	PoolRepo
	PortfolioRepo
	LedgerRepo
}
