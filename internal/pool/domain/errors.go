package domain

import (
	"errors"
	"fmt"
)

// ErrKind 业务拒绝的闭集枚举
// 网关按 Kind 结构化映射 HTTP 状态码，禁止对 message 做字符串匹配
type ErrKind uint8

const (
	ErrInvalidAmount ErrKind = iota + 1
	ErrPoolNotFound
	ErrPoolNotOpen
	ErrCapacityExceeded
	ErrInsufficientPoolBalance
	ErrInsufficientPortfolioBalance
	ErrNoInvestment
	ErrDuplicatePoolName
	ErrValidationFailed
)

func (k ErrKind) String() string {
	switch k {
	case ErrInvalidAmount:
		return "InvalidAmount"
	case ErrPoolNotFound:
		return "PoolNotFound"
	case ErrPoolNotOpen:
		return "PoolNotOpen"
	case ErrCapacityExceeded:
		return "CapacityExceeded"
	case ErrInsufficientPoolBalance:
		return "InsufficientPoolBalance"
	case ErrInsufficientPortfolioBalance:
		return "InsufficientPortfolioBalance"
	case ErrNoInvestment:
		return "NoInvestment"
	case ErrDuplicatePoolName:
		return "DuplicatePoolName"
	case ErrValidationFailed:
		return "ValidationFailed"
	default:
		return "Unknown"
	}
}

// DomainError 业务拒绝。跟基础设施错误 (pkg/xerr) 区分开：
// 业务拒绝不允许自动重试，基础设施错误调用方可以重试。
type DomainError struct {
	Kind   ErrKind
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func Errf(kind ErrKind, format string, args ...interface{}) error {
	return &DomainError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf 取出业务错误的 Kind；不是业务错误返回 false
func KindOf(err error) (ErrKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// IsKind 判断 err 是不是指定 Kind 的业务拒绝
func IsKind(err error, kind ErrKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
