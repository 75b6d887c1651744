package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 资金三件套：入金 / 出金 / 拒绝
	DepositTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcfund",
		Name:      "pool_deposit_total",
		Help:      "Total number of completed deposits.",
	}, []string{"pool"})

	WithdrawTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcfund",
		Name:      "pool_withdraw_total",
		Help:      "Total number of completed withdrawals.",
	}, []string{"pool"})

	RejectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcfund",
		Name:      "pool_reject_total",
		Help:      "Total number of rejected balance operations.",
	}, []string{"op", "reason"})

	// 对账修复次数，正常应该是 0，报警阈值 >0
	ReconcileDriftTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btcfund",
		Name:      "pool_reconcile_drift_total",
		Help:      "Total number of balance drifts repaired by reconciliation.",
	}, []string{"kind"}) // kind: pool/portfolio
)
