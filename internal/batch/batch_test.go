// SPDX-License-Identifier: MIT
package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"denoise/internal/denoise"
	"denoise/pkg/utils"
)

func TestRunPartialFailure(t *testing.T) {
	items := PlanItems([]string{"a.wav", "bad.wav", "c.wav", "d.wav"}, "out")
	errBad := errors.New("corrupt header")

	var inFlight, peak atomic.Int64
	fn := func(_ context.Context, item Item) (*denoise.Result, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if item.Input == "bad.wav" {
			return nil, errBad
		}
		return &denoise.Result{Method: denoise.MethodAdaptive, Branch: denoise.BranchMedium}, nil
	}

	mock := &utils.MockTransport{}
	report := Run(context.Background(), items, 2, fn, WithTransport(mock))

	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, 3, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	assert.LessOrEqual(t, peak.Load(), int64(2))

	assert.Equal(t, filepath.Join("out", "c.wav"), report.Outcomes[2].Item.Output)
	assert.NotNil(t, report.Outcomes[3].Result)
	assert.ErrorIs(t, report.Outcomes[1].Err, errBad)

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, errBad)
	assert.Contains(t, err.Error(), "bad.wav")

	require.Equal(t, 4, mock.Len())
	var failed int
	for _, m := range mock.Messages {
		p, ok := m.(Progress)
		require.True(t, ok)
		assert.Equal(t, 4, p.Total)
		if p.Status == "failed" {
			failed++
			assert.Equal(t, "bad.wav", p.Input)
		} else {
			assert.Equal(t, "adaptive", p.Method)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunAllSucceed(t *testing.T) {
	items := PlanItems([]string{"a.wav", "b.wav"}, "out")
	report := Run(context.Background(), items, 0, func(context.Context, Item) (*denoise.Result, error) {
		return &denoise.Result{}, nil
	})
	assert.NoError(t, report.Err())
	assert.Equal(t, 2, report.Succeeded())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	report := Run(ctx, PlanItems([]string{"a.wav", "b.wav", "c.wav"}, "out"), 1,
		func(context.Context, Item) (*denoise.Result, error) {
			calls.Add(1)
			return &denoise.Result{}, nil
		})

	assert.Zero(t, calls.Load())
	assert.Equal(t, 3, report.Failed())
	assert.ErrorIs(t, report.Err(), context.Canceled)
}

func TestFindAudioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.wav", "a.WAV", "notes.txt", "c.flac"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.wav"), 0o755))

	files, err := FindAudioFiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.WAV"), filepath.Join(dir, "b.wav")}, files)

	files, err = FindAudioFiles(dir, []string{".flac"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "c.flac")}, files)

	_, err = FindAudioFiles(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
