package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/pkg/logger"
)

// PoolService 池子生命周期：目前只有创建
// 满仓自动翻 full 状态暂不做，容量约束由资金引擎的谓词兜底
type PoolService struct {
	repo  domain.LedgerStore
	cache Cache
}

func NewPoolService(repo domain.LedgerStore, cache Cache) *PoolService {
	return &PoolService{repo: repo, cache: cache}
}

// CreatePool 创建池子
// 资产强制 BTC，余额从 0 开始，状态默认 open
func (s *PoolService) CreatePool(ctx context.Context, spec domain.PoolSpec) (*domain.Pool, error) {
	// 名字只修剪这一次，查重和落库用同一个值
	spec.Name = strings.TrimSpace(spec.Name)

	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	// 先查重，给出明确的业务拒绝
	// 并发创建同名池子会被唯一索引兜住，表现为基础设施错误
	existing, err := s.repo.GetPoolByName(ctx, spec.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Errf(domain.ErrDuplicatePoolName, "pool with name %q already exists", spec.Name)
	}

	now := time.Now().UTC()
	pool := &domain.Pool{
		Name:           spec.Name,
		Asset:          domain.AssetBTC,
		TotalCapacity:  spec.TotalCapacity,
		CurrentBalance: decimal.Zero,
		InterestRate:   spec.InterestRate,
		StartDate:      spec.StartDate,
		EndDate:        spec.EndDate,
		Status:         domain.PoolStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreatePool(ctx, pool); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.DelOpenPools(ctx)
	}

	logger.Info(ctx, "创建池子成功",
		zap.Int64("pool", pool.ID),
		zap.String("name", pool.Name),
		zap.String("capacity", pool.TotalCapacity.String()),
	)
	return pool, nil
}

func validateSpec(spec domain.PoolSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return domain.Errf(domain.ErrValidationFailed, "pool name is required")
	}
	if spec.TotalCapacity.Sign() < 0 {
		return domain.Errf(domain.ErrValidationFailed, "total capacity must not be negative")
	}
	if spec.InterestRate.Sign() < 0 {
		return domain.Errf(domain.ErrValidationFailed, "interest rate must not be negative")
	}
	if spec.StartDate.IsZero() || spec.EndDate.IsZero() {
		return domain.Errf(domain.ErrValidationFailed, "start date and end date are required")
	}
	if !spec.EndDate.After(spec.StartDate) {
		return domain.Errf(domain.ErrValidationFailed, "end date must be after start date")
	}
	return nil
}
