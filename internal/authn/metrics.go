// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package authn

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for authentication attempt metrics.
const (
	StatusAuthenticated = "authenticated"
	StatusRejected      = "rejected"
	StatusNotApplicable = "not_applicable"
	StatusError         = "error"
)

// authAttempts counts authentication attempts by scope, strategy, and
// terminal status. Use RegisterMetrics to register it with a Prometheus
// registry.
var authAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "donelist_auth_attempts_total",
		Help: "Total number of authentication attempts",
	},
	[]string{"scope", "strategy", "status"},
)

// RegisterMetrics registers the package's metrics with the registry.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(authAttempts)
}
