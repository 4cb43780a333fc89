package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printflow_login_failures_total",
		Help: "Number of rejected login attempts with a wrong password",
	})

	accountLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printflow_account_lockouts_total",
		Help: "Number of accounts locked after too many failed logins",
	})

	ordersFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printflow_production_orders_finalized_total",
		Help: "Number of production orders finalized by a finished production sheet",
	})
)
