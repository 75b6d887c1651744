package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"btcfund.com/internal/pool/domain"
	"btcfund.com/internal/pool/service"
	"btcfund.com/pkg/common"
)

// Pool 网关层：参数解析 + 错误映射，业务全在 service
type Pool struct {
	Balance   *service.BalanceService
	Query     *service.QueryService
	Pools     *service.PoolService
	Reconcile *service.ReconcileService
}

func NewPool(balance *service.BalanceService, query *service.QueryService, pools *service.PoolService, reconcile *service.ReconcileService) *Pool {
	return &Pool{Balance: balance, Query: query, Pools: pools, Reconcile: reconcile}
}

type createPoolReq struct {
	Name          string          `json:"name" binding:"required"`
	TotalCapacity decimal.Decimal `json:"totalCapacity"`
	InterestRate  decimal.Decimal `json:"interestRate"`
	StartDate     time.Time       `json:"startDate" binding:"required"`
	EndDate       time.Time       `json:"endDate" binding:"required"`
}

type balanceOpReq struct {
	UserID int64           `json:"userId" binding:"required"`
	PoolID int64           `json:"poolId" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type reconcileReq struct {
	PoolID int64 `json:"poolId"` // 0 表示全量
}

// GET /api/pools
func (h *Pool) List(c *gin.Context) {
	pools, err := h.Query.ListOpenPools(c.Request.Context())
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Success(c, pools)
}

// POST /api/pools
func (h *Pool) Create(c *gin.Context) {
	var req createPoolReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 1001001, "invalid request body")
		return
	}

	pool, err := h.Pools.CreatePool(c.Request.Context(), domain.PoolSpec{
		Name:          req.Name,
		TotalCapacity: req.TotalCapacity,
		InterestRate:  req.InterestRate,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	})
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Created(c, pool)
}

// POST /api/pools/deposit
func (h *Pool) Deposit(c *gin.Context) {
	var req balanceOpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 1001001, "invalid request body")
		return
	}

	record, err := h.Balance.Deposit(c.Request.Context(), req.UserID, req.PoolID, req.Amount)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Success(c, record)
}

// POST /api/pools/withdraw
func (h *Pool) Withdraw(c *gin.Context) {
	var req balanceOpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 1001001, "invalid request body")
		return
	}

	record, err := h.Balance.Withdraw(c.Request.Context(), req.UserID, req.PoolID, req.Amount)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Success(c, record)
}

// GET /api/pools/transactions/:userId
func (h *Pool) Transactions(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		common.Fail(c, http.StatusBadRequest, 1001001, "invalid user id")
		return
	}

	history, err := h.Query.TransactionHistory(c.Request.Context(), userID)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Success(c, history)
}

// GET /api/pools/profile/:userId
func (h *Pool) Profile(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		common.Fail(c, http.StatusBadRequest, 1001001, "invalid user id")
		return
	}

	profile, err := h.Query.GetInvestmentProfile(c.Request.Context(), userID)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Success(c, profile)
}

// POST /api/pools/reconcile (运维用)
func (h *Pool) Reconciliation(c *gin.Context) {
	var req reconcileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 1001001, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	if req.PoolID > 0 {
		report, err := h.Reconcile.Reconcile(ctx, req.PoolID)
		if err != nil {
			failDomain(c, err)
			return
		}
		common.Success(c, report)
		return
	}

	reports, err := h.Reconcile.ReconcileAll(ctx)
	if err != nil {
		failDomain(c, err)
		return
	}
	common.Success(c, reports)
}

// failDomain 按错误 Kind 结构化映射 HTTP 状态码，绝不做字符串匹配
func failDomain(c *gin.Context, err error) {
	kind, ok := domain.KindOf(err)
	if !ok {
		// 基础设施错误：对外不透出细节，日志里留全量
		common.FailLogged(c, http.StatusInternalServerError, 5000000, "internal error", err)
		return
	}

	httpStatus, bizCode := statusOf(kind)
	common.Fail(c, httpStatus, bizCode, err.Error())
}

func statusOf(kind domain.ErrKind) (httpStatus int, bizCode int) {
	switch kind {
	case domain.ErrInvalidAmount:
		return http.StatusBadRequest, 1001001
	case domain.ErrValidationFailed:
		return http.StatusBadRequest, 1001002
	case domain.ErrPoolNotFound:
		return http.StatusNotFound, 1004001
	case domain.ErrNoInvestment:
		return http.StatusNotFound, 1004002
	case domain.ErrPoolNotOpen:
		return http.StatusBadRequest, 1005004
	case domain.ErrCapacityExceeded:
		return http.StatusBadRequest, 1005001
	case domain.ErrInsufficientPoolBalance:
		return http.StatusBadRequest, 1005002
	case domain.ErrInsufficientPortfolioBalance:
		return http.StatusBadRequest, 1005003
	case domain.ErrDuplicatePoolName:
		return http.StatusConflict, 1006001
	default:
		return http.StatusInternalServerError, 5000000
	}
}
