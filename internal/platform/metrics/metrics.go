package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pethealth"

var (
	PetDeletes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "pet_cascade_deletes_total", Help: "Number of pets deleted together with their records."},
	)
	CascadedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cascaded_records_total", Help: "Number of dependent records removed by pet deletes, by kind."},
		[]string{"kind"},
	)
	Restores = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "undo_restores_total", Help: "Undo requests by kind and result (restored or duplicate)."},
		[]string{"kind", "result"},
	)
	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "persist_failures_total", Help: "Failed writes to the state store, by key."},
		[]string{"key"},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of requests rejected by the per-IP limiter."},
	)
)

const (
	ResultRestored  = "restored"
	ResultDuplicate = "duplicate"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(PetDeletes)
	reg.MustRegister(CascadedRecords)
	reg.MustRegister(Restores)
	reg.MustRegister(PersistFailures)
	reg.MustRegister(RateLimitRejected)
}
