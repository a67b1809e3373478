// SPDX-License-Identifier: MIT

// Package batch runs a processing function over many files with bounded
// parallelism. One item failing never stops the others.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"denoise/internal/denoise"
	"denoise/internal/log"
	"denoise/internal/transport"
)

// DefaultExtensions are the file extensions FindAudioFiles picks up.
var DefaultExtensions = []string{".wav"}

// Item is one file to process.
type Item struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ProcessFunc processes a single item.
type ProcessFunc func(ctx context.Context, item Item) (*denoise.Result, error)

// Outcome is the result of one item. Exactly one of Result and Err is set.
type Outcome struct {
	Item    Item
	Result  *denoise.Result
	Err     error
	Elapsed time.Duration
}

// Report holds one outcome per item, in input order.
type Report struct {
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Succeeded returns the number of items that completed.
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of items that returned an error.
func (r Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Err aggregates every failure, or returns nil when all items succeeded.
func (r Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", o.Item.Input, o.Err))
		}
	}
	return result.ErrorOrNil()
}

// Progress is published once per finished item.
type Progress struct {
	Completed  int            `json:"completed"`
	Total      int            `json:"total"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	Status     string         `json:"status"`
	Method     string         `json:"method,omitempty"`
	Branch     denoise.Branch `json:"branch,omitempty"`
	NoiseRatio float64        `json:"noise_ratio,omitempty"`
	Error      string         `json:"error,omitempty"`
	ElapsedMS  int64          `json:"elapsed_ms"`
}

// Option customises Run.
type Option func(*runner)

// WithTransport publishes a Progress event per item to t.
func WithTransport(t transport.Transport) Option {
	return func(r *runner) {
		r.transport = t
	}
}

type runner struct {
	transport transport.Transport
	completed atomic.Int64
	total     int
}

// Run processes items with at most workers in flight. Every item gets an
// Outcome; errors are collected rather than cancelling siblings. Items not
// yet started when ctx is cancelled fail with the context error.
func Run(ctx context.Context, items []Item, workers int, fn ProcessFunc, opts ...Option) Report {
	if workers <= 0 {
		workers = 1
	}
	r := &runner{total: len(items)}
	for _, opt := range opts {
		opt(r)
	}

	start := time.Now()
	outcomes := make([]Outcome, len(items))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = r.process(ctx, item, fn)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Outcomes: outcomes, Elapsed: time.Since(start)}
	log.WithFields(log.Fields{
		"items":     len(items),
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
		"elapsed":   report.Elapsed,
	}).Info("batch complete")
	return report
}

func (r *runner) process(ctx context.Context, item Item, fn ProcessFunc) Outcome {
	start := time.Now()
	out := Outcome{Item: item}

	if err := ctx.Err(); err != nil {
		out.Err = err
	} else {
		out.Result, out.Err = fn(ctx, item)
	}
	out.Elapsed = time.Since(start)

	if out.Err != nil {
		log.WithFields(log.Fields{"input": item.Input}).Warnf("processing failed: %v", out.Err)
	} else {
		log.WithFields(log.Fields{"input": item.Input, "output": item.Output}).Debug("processed")
	}

	r.publish(out)
	return out
}

func (r *runner) publish(o Outcome) {
	completed := int(r.completed.Add(1))
	if r.transport == nil {
		return
	}

	p := Progress{
		Completed: completed,
		Total:     r.total,
		Input:     o.Item.Input,
		Output:    o.Item.Output,
		Status:    "done",
		ElapsedMS: o.Elapsed.Milliseconds(),
	}
	if o.Err != nil {
		p.Status = "failed"
		p.Error = o.Err.Error()
	}
	if o.Result != nil {
		p.Method = o.Result.Method.String()
		p.Branch = o.Result.Branch
		p.NoiseRatio = o.Result.NoiseRatio
	}
	if err := r.transport.Send(p); err != nil {
		log.Warnf("publishing progress: %v", err)
	}
}

// FindAudioFiles lists the files in dir whose extension matches one of
// extensions, case-insensitively, sorted by name. Subdirectories are not
// searched.
func FindAudioFiles(dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.ContainsFunc(extensions, func(want string) bool { return strings.EqualFold(want, ext) }) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// PlanItems maps every input to a file of the same name in outDir.
func PlanItems(inputs []string, outDir string) []Item {
	items := make([]Item, len(inputs))
	for i, in := range inputs {
		items[i] = Item{Input: in, Output: filepath.Join(outDir, filepath.Base(in))}
	}
	return items
}
