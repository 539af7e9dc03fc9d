// Package metrics records store operation counts and latencies in Prometheus text format.
package metrics

import (
	"clientsvc/internal/types"
	"errors"
	"fmt"
	"io"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
)

// Result labels a finished store operation.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrStorageUnavailable):
		return "unavailable"
	case errors.Is(err, types.ErrStorageRejected):
		return "rejected"
	default:
		return "error"
	}
}

// ObserveStoreOp counts one store operation and records its duration.
func ObserveStoreOp(backend, op string, start time.Time, err error) {
	vm.GetOrCreateCounter(fmt.Sprintf(`clientsvc_store_ops_total{backend=%q,op=%q,result=%q}`,
		backend, op, Result(err))).Inc()
	vm.GetOrCreateHistogram(fmt.Sprintf(`clientsvc_store_op_duration_seconds{backend=%q,op=%q}`,
		backend, op)).UpdateDuration(start)
}

// CountOutcome counts service level outcomes such as not_found or invalid_input.
func CountOutcome(op, outcome string) {
	vm.GetOrCreateCounter(fmt.Sprintf(`clientsvc_service_outcomes_total{op=%q,outcome=%q}`, op, outcome)).Inc()
}

// StoreOpCount returns the current value of a store op counter.
func StoreOpCount(backend, op, result string) uint64 {
	return vm.GetOrCreateCounter(fmt.Sprintf(`clientsvc_store_ops_total{backend=%q,op=%q,result=%q}`,
		backend, op, result)).Get()
}

// WritePrometheus writes all metrics, including process metrics.
func WritePrometheus(w io.Writer) {
	vm.WritePrometheus(w, true)
}
