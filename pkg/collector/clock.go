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

//go:generate mockgen -destination=mock_collector.go -package=collector github.com/NVIDIA/tracecollect/pkg/collector Clock,Timer,Decoder,SessionProvider,TraceSession

import "time"

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Timer(d time.Duration) Timer
}

// Timer abstracts a one-shot timer.
type Timer interface {
	Chan() <-chan time.Time
	Stop() bool
}

// realClock implements Clock using the real time package.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Timer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) Chan() <-chan time.Time {
	return r.t.C
}

func (r *realTimer) Stop() bool {
	return r.t.Stop()
}
