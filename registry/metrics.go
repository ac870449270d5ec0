// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors a Registry updates.
type Metrics struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter
	Invalidations  prometheus.Counter
	Mutations      *prometheus.CounterVec
	Entries        prometheus.Gauge
}

// NewMetrics creates the registry collectors and registers them with reg.
// A nil reg leaves them unregistered, which keeps independent registries
// (for example in tests) from colliding on the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "statreg_registry_cache_hits_total",
			Help: "Total number of point lookups served from the cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "statreg_registry_cache_misses_total",
			Help: "Total number of point lookups that had to read the entry store",
		}),
		CacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "statreg_registry_cache_evictions_total",
			Help: "Total number of least-recently-used cache evictions",
		}),
		Invalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "statreg_registry_cache_invalidations_total",
			Help: "Total number of cache slots invalidated by mutations",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statreg_registry_mutations_total",
			Help: "Total number of committed mutations by operation",
		}, []string{"op"}),
		Entries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "statreg_registry_entries",
			Help: "Current number of live statute entries",
		}),
	}
}

func (m *Metrics) IncrementCacheHits() {
	m.CacheHits.Inc()
}

func (m *Metrics) IncrementCacheMisses() {
	m.CacheMisses.Inc()
}

func (m *Metrics) IncrementCacheEvictions() {
	m.CacheEvictions.Inc()
}

func (m *Metrics) IncrementInvalidations() {
	m.Invalidations.Inc()
}

func (m *Metrics) IncrementMutations(op string) {
	m.Mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) SetEntries(count int) {
	m.Entries.Set(float64(count))
}
