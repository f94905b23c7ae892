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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/NVIDIA/tracecollect/pkg/config"
	cnserrors "github.com/NVIDIA/tracecollect/pkg/errors"
	"github.com/NVIDIA/tracecollect/pkg/provider"
)

const testPID = 4242

type observed struct {
	mu      sync.Mutex
	results []SegmentResult
}

func (o *observed) ObserveSegment(res SegmentResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, res)
}

// contentDecoder fails for segments whose content is "corrupt".
func contentDecoder(calls *int) DecoderFunc {
	return func(_ context.Context, path string) ([]Event, error) {
		*calls++
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if string(b) == "corrupt" {
			return nil, errors.New("bad block")
		}
		return []Event{{Provider: "test", Name: string(b)}}, nil
	}
}

func testConfig() *config.Configuration {
	cfg := config.New(config.WithProcessID(testPID))
	cfg.AddProvider(provider.EventSpec{Provider: "My-Source", Keywords: 0x1, Level: provider.LevelInformational})
	return cfg
}

func newTestHandshake(t *testing.T, opts ...Option) (*HandshakeCollector, string) {
	t.Helper()
	dir := t.TempDir()
	control := filepath.Join(dir, "MyApp.eventpipeconfig")

	c, err := New(KindHandshake, testConfig(), append([]Option{WithControlPath(control)}, opts...)...)
	require.NoError(t, err)
	h, ok := c.(*HandshakeCollector)
	require.True(t, ok)
	return h, control
}

func writeSegment(t *testing.T, h *HandshakeCollector, n int, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.SegmentPath(n), []byte(content), 0o600))
}

func TestHandshakeStartPublishesControlFile(t *testing.T) {
	h, control := newTestHandshake(t)

	require.NoError(t, h.Start(t.Context()))
	assert.Equal(t, StateCollecting, h.State())

	b, err := os.ReadFile(control)
	require.NoError(t, err)
	assert.Equal(t, "ProcessId=4242\nProviders=My-Source:0x01:4\n", string(b))

	entries, err := os.ReadDir(filepath.Dir(control))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestHandshakeStartControlFileExists(t *testing.T) {
	h, control := newTestHandshake(t)
	require.NoError(t, os.WriteFile(control, []byte("ProcessId=1\n"), 0o600))

	err := h.Start(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrControlFileExists)
	assert.Equal(t, cnserrors.ErrCodePrecondition, cnserrors.CodeOf(err))
	assert.Equal(t, StateIdle, h.State())

	b, err := os.ReadFile(control)
	require.NoError(t, err)
	assert.Equal(t, "ProcessId=1\n", string(b))
}

func TestHandshakeDoubleStart(t *testing.T) {
	h, control := newTestHandshake(t)
	require.NoError(t, h.Start(t.Context()))

	before, err := os.ReadFile(control)
	require.NoError(t, err)

	err = h.Start(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, cnserrors.ErrCodePrecondition, cnserrors.CodeOf(err))
	assert.Equal(t, StateCollecting, h.State())

	after, err := os.ReadFile(control)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHandshakeSecondCollectorRejected(t *testing.T) {
	h, control := newTestHandshake(t)
	require.NoError(t, h.Start(t.Context()))

	other, err := New(KindHandshake, testConfig(), WithControlPath(control))
	require.NoError(t, err)

	err = other.Start(t.Context())
	assert.ErrorIs(t, err, ErrControlFileExists)
	assert.Equal(t, StateIdle, other.State())
}

func TestHandshakeDrainWithCorruptSegment(t *testing.T) {
	obs := &observed{}
	calls := 0
	h, _ := newTestHandshake(t,
		WithDecoder(contentDecoder(&calls)),
		WithObserver(obs),
		WithRetryDelay(0),
	)
	require.NoError(t, h.Start(t.Context()))

	writeSegment(t, h, 1, "one")
	writeSegment(t, h, 2, "corrupt")
	writeSegment(t, h, 3, "three")
	writeSegment(t, h, 4, "four")
	writeSegment(t, h, 5, "partial")

	artifact := filepath.Join(h.segmentDir, "MyApp.4242.1.etlx")
	require.NoError(t, os.WriteFile(artifact, []byte("x"), 0o600))

	var names []string
	for range 4 {
		events, err := h.ReadLatest(t.Context())
		require.NoError(t, err)
		for _, e := range events {
			names = append(names, e.Name)
		}
	}

	assert.Equal(t, []string{"one", "three", "four"}, names)
	assert.Equal(t, 1+5+1+1, calls)

	require.Len(t, obs.results, 4)
	for i, res := range obs.results {
		assert.Equal(t, i+1, res.Index)
		assert.Equal(t, h.SegmentPath(i+1), res.Path)
	}
	assert.True(t, obs.results[1].Abandoned)
	assert.Equal(t, 5, obs.results[1].Attempts)
	assert.True(t, cnserrors.HasCode(obs.results[1].Err, cnserrors.ErrCodeTransientIO))
	assert.False(t, obs.results[0].Abandoned)
	assert.Equal(t, 1, obs.results[0].Attempts)

	for n := 1; n <= 4; n++ {
		assert.NoFileExists(t, h.SegmentPath(n))
	}
	assert.NoFileExists(t, artifact)
	assert.FileExists(t, h.SegmentPath(5), "segment still being written must stay")

	events, err := h.ReadLatest(t.Context())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, obs.results, 4)
}

func TestHandshakeReadLatestNoFlushInterval(t *testing.T) {
	calls := 0
	h, _ := newTestHandshake(t, WithDecoder(contentDecoder(&calls)))
	require.NoError(t, h.Start(t.Context()))

	writeSegment(t, h, 1, "one")

	events, err := h.ReadLatest(t.Context())
	require.NoError(t, err)
	assert.Nil(t, events)
	assert.Zero(t, calls)
	assert.FileExists(t, h.SegmentPath(1))
}

func TestHandshakeReadLatestWaitsForNextSegment(t *testing.T) {
	calls := 0
	h, _ := newTestHandshake(t,
		WithDecoder(contentDecoder(&calls)),
		WithFlushInterval(5*time.Millisecond),
	)
	require.NoError(t, h.Start(t.Context()))

	writeSegment(t, h, 1, "one")
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(h.SegmentPath(2), []byte("two"), 0o600)
	}()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	events, err := h.ReadLatest(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "one", events[0].Name)
}

func TestHandshakeCancelDuringWait(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := NewMockClock(ctrl)
	timer := NewMockTimer(ctrl)
	clock.EXPECT().Timer(time.Hour).Return(timer)
	timer.EXPECT().Chan().Return(make(chan time.Time))
	timer.EXPECT().Stop().Return(true)

	decoder := NewMockDecoder(ctrl)

	h, _ := newTestHandshake(t,
		WithClock(clock),
		WithDecoder(decoder),
		WithFlushInterval(time.Hour),
	)
	require.NoError(t, h.Start(t.Context()))
	writeSegment(t, h, 1, "one")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	start := time.Now()
	events, err := h.ReadLatest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, events)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, h.counter)
	assert.FileExists(t, h.SegmentPath(1))
}

func TestHandshakeCancelBetweenDecodeAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(t.Context())
	decoder := NewMockDecoder(ctrl)
	decoder.EXPECT().Decode(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) ([]Event, error) {
			cancel()
			return nil, errors.New("bad block")
		})

	obs := &observed{}
	h, _ := newTestHandshake(t, WithDecoder(decoder), WithObserver(obs), WithRetryDelay(time.Hour))
	require.NoError(t, h.Start(t.Context()))
	writeSegment(t, h, 1, "one")
	writeSegment(t, h, 2, "two")

	_, err := h.ReadLatest(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, obs.results)
	assert.Equal(t, 1, h.counter)
	assert.FileExists(t, h.SegmentPath(1))
}

func TestHandshakeStop(t *testing.T) {
	h, control := newTestHandshake(t)
	require.NoError(t, h.Start(t.Context()))
	writeSegment(t, h, 1, "one")

	require.NoError(t, h.Stop(t.Context()))
	assert.Equal(t, StateStopped, h.State())
	assert.NoFileExists(t, control)
	assert.FileExists(t, h.SegmentPath(1))

	err := h.Stop(t.Context())
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = h.ReadLatest(t.Context())
	assert.ErrorIs(t, err, ErrInvalidState)

	err = h.Start(t.Context())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHandshakeStopControlFileAlreadyGone(t *testing.T) {
	h, control := newTestHandshake(t)
	require.NoError(t, h.Start(t.Context()))
	require.NoError(t, os.Remove(control))

	assert.NoError(t, h.Stop(t.Context()))
	assert.Equal(t, StateStopped, h.State())
}

func TestHandshakeReadBeforeStart(t *testing.T) {
	h, _ := newTestHandshake(t)
	_, err := h.ReadLatest(t.Context())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHandshakeOutputPath(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfg := config.New(config.WithProcessID(7), config.WithOutputPath(out))

	c, err := New(KindHandshake, cfg, WithControlPath(filepath.Join(dir, "Api.eventpipeconfig")))
	require.NoError(t, err)

	h := c.(*HandshakeCollector)
	assert.Equal(t, filepath.Join(dir, "Api.eventpipeconfig"), h.ControlPath())
	assert.Equal(t, filepath.Join(out, "Api.7.3.nettrace"), h.SegmentPath(3))
}

func TestHandshakeDrainsFinalSegment(t *testing.T) {
	obs := &observed{}
	calls := 0
	h, control := newTestHandshake(t,
		WithDecoder(contentDecoder(&calls)),
		WithObserver(obs),
		WithRetryDelay(0),
		WithFinalSegmentWait(0),
	)
	require.NoError(t, h.Start(t.Context()))

	writeSegment(t, h, 1, "one")
	writeSegment(t, h, 2, "corrupt")
	writeSegment(t, h, 3, "three")

	var names []string
	for range 5 {
		events, err := h.ReadLatest(t.Context())
		require.NoError(t, err)
		for _, e := range events {
			names = append(names, e.Name)
		}
	}
	assert.Equal(t, []string{"one"}, names)

	require.NoError(t, h.Stop(t.Context()))
	assert.NoFileExists(t, control)

	events, err := h.Drain(t.Context())
	require.NoError(t, err)
	for _, e := range events {
		names = append(names, e.Name)
	}

	assert.Equal(t, []string{"one", "three"}, names)
	for n := 1; n <= 3; n++ {
		assert.NoFileExists(t, h.SegmentPath(n))
	}
	require.Len(t, obs.results, 3)
	assert.True(t, obs.results[1].Abandoned)
	assert.Equal(t, 3, obs.results[2].Index)

	_, err = h.Drain(t.Context())
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHandshakeDrainSingleSegmentRun(t *testing.T) {
	calls := 0
	h, _ := newTestHandshake(t, WithDecoder(contentDecoder(&calls)), WithFinalSegmentWait(0))
	require.NoError(t, h.Start(t.Context()))
	writeSegment(t, h, 1, "only")

	events, err := h.ReadLatest(t.Context())
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, h.Stop(t.Context()))
	events, err = h.Drain(t.Context())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "only", events[0].Name)
	assert.NoFileExists(t, h.SegmentPath(1))
}

func TestHandshakeDrainWaitsForFinalSegment(t *testing.T) {
	calls := 0
	h, _ := newTestHandshake(t, WithDecoder(contentDecoder(&calls)), WithFinalSegmentWait(5*time.Second))
	require.NoError(t, h.Start(t.Context()))
	require.NoError(t, h.Stop(t.Context()))

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(h.SegmentPath(1), []byte("late"), 0o600)
	}()

	events, err := h.Drain(t.Context())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "late", events[0].Name)
}

func TestHandshakeDrainWithoutSegments(t *testing.T) {
	calls := 0
	h, _ := newTestHandshake(t, WithDecoder(contentDecoder(&calls)), WithFinalSegmentWait(0))
	require.NoError(t, h.Start(t.Context()))
	require.NoError(t, h.Stop(t.Context()))

	events, err := h.Drain(t.Context())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Zero(t, calls)
}

func TestHandshakeDrainCancelledWhileWaiting(t *testing.T) {
	h, _ := newTestHandshake(t, WithFinalSegmentWait(time.Hour))
	require.NoError(t, h.Start(t.Context()))
	require.NoError(t, h.Stop(t.Context()))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := h.Drain(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, h.counter)
}

func TestHandshakeDrainBeforeStop(t *testing.T) {
	h, _ := newTestHandshake(t)
	require.NoError(t, h.Start(t.Context()))

	_, err := h.Drain(t.Context())
	assert.ErrorIs(t, err, ErrInvalidState)
}
