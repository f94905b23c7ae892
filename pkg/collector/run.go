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
	"context"
	"errors"
	"time"
)

// Sink receives batches of events read from a collector.
type Sink interface {
	Write(ctx context.Context, events []Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, events []Event) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, events []Event) error {
	return f(ctx, events)
}

// Run reads from c until ctx is done, handing every non-empty batch to sink.
// When a read yields nothing it waits idle before reading again. Run returns
// nil once ctx is done; read and sink failures are returned as is.
func Run(ctx context.Context, c Collector, sink Sink, idle time.Duration) error {
	if idle <= 0 {
		idle = time.Millisecond
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		events, err := c.ReadLatest(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return nil
				}
			}
			return err
		}

		if len(events) > 0 {
			if err := sink.Write(ctx, events); err != nil {
				return err
			}
			continue
		}

		t := time.NewTimer(idle)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}
