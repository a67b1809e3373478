// SPDX-License-Identifier: MIT
package denoise

import (
	"context"
	"fmt"

	"denoise/internal/filter"
	"denoise/internal/log"
)

// Branch records which path the adaptive method took.
type Branch int

const (
	BranchNone Branch = iota
	BranchLow
	BranchMedium
	BranchHigh
)

func (b Branch) String() string {
	switch b {
	case BranchLow:
		return "low"
	case BranchMedium:
		return "medium"
	case BranchHigh:
		return "high"
	default:
		return ""
	}
}

// MarshalText lets a branch appear by name in JSON progress events.
func (b Branch) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// SelectBranch maps a noise ratio onto a branch using the thresholds.
func (p AdaptiveParams) SelectBranch(ratio float64) Branch {
	switch {
	case ratio < p.LowThreshold:
		return BranchLow
	case ratio < p.HighThreshold:
		return BranchMedium
	default:
		return BranchHigh
	}
}

// adaptive band-passes with the broadband profile, measures what is left and
// escalates to spectral subtraction and then the delegate as noise rises.
// Explicit cutoffs are ignored so the first stage always uses the profile band.
func (e *Engine) adaptive(ctx context.Context, samples []float64, rate int, p Params) ([]float64, Branch, float64, error) {
	stage := p.Bandpass
	stage.Profile = filter.DefaultProfile
	stage.LowCut, stage.HighCut = 0, 0

	out, err := bandpass(samples, rate, stage)
	if err != nil {
		return nil, BranchNone, 0, err
	}

	ratio := e.estimator.NoiseRatio(out)
	branch := p.Adaptive.SelectBranch(ratio)

	log.WithFields(log.Fields{
		"noise_ratio": fmt.Sprintf("%.4f", ratio),
		"branch":      branch.String(),
	}).Debug("adaptive branch selected")

	if branch == BranchLow {
		return out, branch, ratio, nil
	}

	out, err = subtract(out, rate, p.Subtraction)
	if err != nil {
		return nil, BranchNone, ratio, err
	}
	if branch == BranchMedium {
		return out, branch, ratio, nil
	}

	out, err = e.suppress(ctx, out, rate, p.Suppression)
	if err != nil {
		return nil, BranchNone, ratio, err
	}
	return out, branch, ratio, nil
}
