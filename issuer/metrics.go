/*
 * Copyright (C) 2024 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package issuer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	offersCreated     prometheus.Counter
	credentialsIssued *prometheus.CounterVec
	issuanceErrors    *prometheus.CounterVec
}

func newMetricSet(registerer prometheus.Registerer) *metricSet {
	result := &metricSet{
		offersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openid4vci",
			Subsystem: "issuer",
			Name:      "offers_created_total",
			Help:      "Number of credential offers created.",
		}),
		credentialsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openid4vci",
			Subsystem: "issuer",
			Name:      "credentials_issued_total",
			Help:      "Number of credentials issued, by format.",
		}, []string{"format"}),
		issuanceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openid4vci",
			Subsystem: "issuer",
			Name:      "issuance_errors_total",
			Help:      "Number of failed credential requests, by protocol error code.",
		}, []string{"code"}),
	}
	if registerer != nil {
		registerer.MustRegister(result.offersCreated, result.credentialsIssued, result.issuanceErrors)
	}
	return result
}
