package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_dispatch_total",
			Help: "Dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	statusSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_status_sync_total",
			Help: "Status sync attempts by result",
		},
		[]string{"result"},
	)
)
