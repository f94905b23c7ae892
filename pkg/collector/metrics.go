// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusDecoded   = "decoded"
	statusAbandoned = "abandoned"
)

var (
	segmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracecollect_segments_total",
			Help: "Total number of trace segments consumed",
		},
		[]string{"status"}, // decoded or abandoned
	)

	segmentDecodeAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracecollect_segment_decode_attempts_total",
			Help: "Total number of segment decode attempts",
		},
	)

	segmentDecodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracecollect_segment_decode_duration_seconds",
			Help:    "Time taken to decode a trace segment, retries included",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	eventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracecollect_events_total",
			Help: "Total number of decoded events returned",
		},
	)

	cleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracecollect_cleanup_failures_total",
			Help: "Total number of collection artifacts that could not be deleted",
		},
	)
)
