package persistence

import (
	"context"

	"gorm.io/gorm"

	"btcfund.com/internal/pool/domain"
)

// ctxKeyTx 事务注入 context 的 key
const ctxKeyTx = "tx_db"

type Repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// 确保 Repo 实现了聚合仓储接口
var _ domain.LedgerStore = (*Repo)(nil)

// Transaction 实现事务：把 tx 注入 context，fn 里的仓储调用都走同一个 tx
func (r *Repo) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, ctxKeyTx, tx)
		return fn(txCtx)
	})
}

// getDb ctx 里有事务就用事务，没有就用裸连接
func (r *Repo) getDb(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(ctxKeyTx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

// AutoMigrate 建表 (开发/测试环境用；线上走 DDL 审核)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Pool{},
		&domain.UserPortfolio{},
		&domain.Transaction{},
	)
}
