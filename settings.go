package bnb

import (
	"math"
	"time"
)

// PriorityRule selects how NodeQueue scores a node at insertion time (§4.3).
type PriorityRule int

const (
	PriorityBestFirst PriorityRule = iota
	PriorityDepthFirst
	PriorityBestBound
	PriorityPseudoCost
)

func (r PriorityRule) String() string {
	switch r {
	case PriorityBestFirst:
		return "bestFirst"
	case PriorityDepthFirst:
		return "depthFirst"
	case PriorityBestBound:
		return "bestBound"
	case PriorityPseudoCost:
		return "pseudoCost"
	default:
		return "unknown"
	}
}

// BranchRuleKind selects how the branch-and-solve step picks a fractional
// variable to split on (§4.4).
type BranchRuleKind int

const (
	BranchMostFractional BranchRuleKind = iota
	BranchPseudoCost
	BranchStrongBranching
)

func (r BranchRuleKind) String() string {
	switch r {
	case BranchMostFractional:
		return "mostFractional"
	case BranchPseudoCost:
		return "pseudoCost"
	case BranchStrongBranching:
		return "strongBranching"
	default:
		return "unknown"
	}
}

// PseudoCostInit selects how PseudoCosts are seeded (§4.4).
type PseudoCostInit int

const (
	PseudoCostInitStrongBranching PseudoCostInit = iota
	PseudoCostInitReliable
	PseudoCostInitUniform
)

// Settings carries every recognized tunable of the engine (§3). It is built
// with the teacher's fluent-builder idiom (see api.go's Variable/Constraint
// chains) rather than loaded from a file or environment: the engine has no
// CLI or config-file surface (an explicit Non-goal), so a validated struct
// is the whole of the "configuration" ambient concern here.
type Settings struct {
	AbsoluteGapTolerance float64
	RelativeGapTolerance float64
	IntegerTolerance     float64
	PrimalTolerance      float64
	ObjectiveCutoff      float64
	TimeLimit            time.Duration
	IterationLimit       int
	NumProcesses         int
	Verbose              bool

	PriorityRule              PriorityRule
	BranchRule                BranchRuleKind
	PseudoCostInit            PseudoCostInit
	PseudoCostBlendCoef       float64 // alpha in the pseudoCost priority score
	StrongBranchingCandidates int     // top-k candidates examined by strong branching
	ReliabilityThreshold      int     // not read by the search; PseudoCostInitReliable applies no observation threshold
	SOS1BranchingPriority     bool    // prefer SOS1 branching over fractional branching when both are available

	// StealThreshold is the minimum queue size a peer must have before a
	// starved worker may steal a batch from it (§5).
	StealThreshold int
}

// DefaultSettings returns sensible defaults, mirroring the teacher's
// NewProblem()'s use of a single non-zero default (workers: 1) rather than
// a zero-valued struct.
func DefaultSettings() Settings {
	return Settings{
		AbsoluteGapTolerance:      1e-6,
		RelativeGapTolerance:      1e-4,
		IntegerTolerance:          1e-6,
		PrimalTolerance:           1e-7,
		ObjectiveCutoff:           math.Inf(1),
		TimeLimit:                0, // 0 == unlimited
		IterationLimit:            0,
		NumProcesses:              1,
		Verbose:                   false,
		PriorityRule:              PriorityBestFirst,
		BranchRule:                BranchMostFractional,
		PseudoCostInit:            PseudoCostInitUniform,
		PseudoCostBlendCoef:       1.0,
		StrongBranchingCandidates: 5,
		ReliabilityThreshold:      4,
		SOS1BranchingPriority:     true,
		StealThreshold:            4,
	}
}

// WithTimeLimit returns a copy of s with TimeLimit set, chain-style.
func (s Settings) WithTimeLimit(d time.Duration) Settings {
	s.TimeLimit = d
	return s
}

// WithNumProcesses returns a copy of s with NumProcesses set, chain-style.
func (s Settings) WithNumProcesses(n int) Settings {
	s.NumProcesses = n
	return s
}

// WithPriorityRule returns a copy of s with PriorityRule set, chain-style.
func (s Settings) WithPriorityRule(r PriorityRule) Settings {
	s.PriorityRule = r
	return s
}

// WithBranchRule returns a copy of s with BranchRule set, chain-style.
func (s Settings) WithBranchRule(r BranchRuleKind) Settings {
	s.BranchRule = r
	return s
}

// WithObjectiveCutoff returns a copy of s with ObjectiveCutoff set, chain-style.
func (s Settings) WithObjectiveCutoff(cutoff float64) Settings {
	s.ObjectiveCutoff = cutoff
	return s
}

// validate rejects settings combinations that cannot drive a sound search.
func (s Settings) validate() error {
	if s.NumProcesses <= 0 {
		return newSetupError("NumProcesses must be >= 1")
	}
	if s.AbsoluteGapTolerance < 0 || s.RelativeGapTolerance < 0 {
		return newSetupError("gap tolerances must be non-negative")
	}
	if s.IntegerTolerance <= 0 || s.IntegerTolerance >= 0.5 {
		return newSetupError("integerTolerance must be in (0, 0.5)")
	}
	if s.PrimalTolerance <= 0 {
		return newSetupError("primalTolerance must be positive")
	}
	return nil
}
