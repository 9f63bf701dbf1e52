// Package scoring compares two teams' stat results and derives a pick.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/puddin/internal/domain/model"
)

// Default scoring configuration constants.
const (
	baseConfidence       = 50
	defaultMaxConfidence = 95
	maxConfidenceCeiling = 100
	confidencePrecision  = 10 // one decimal place
)

// TiePolicy decides the outcome when both aggregates are equal.
type TiePolicy string

// Supported tie policies.
const (
	// TieTeamA picks the first team with base confidence.
	TieTeamA TiePolicy = "team_a"
	// TieTeamB picks the second team with base confidence.
	TieTeamB TiePolicy = "team_b"
	// TieNoPick reports a tie without a pick.
	TieNoPick TiePolicy = "no_pick"
)

// ParseTiePolicy validates a configured tie policy. Empty means TieTeamA.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch p := TiePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return TieTeamA, nil
	case TieTeamA, TieTeamB, TieNoPick:
		return p, nil
	}
	return "", fmt.Errorf("unknown tie policy %q", s)
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithTiePolicy sets the tie policy. Unknown policies are ignored.
func WithTiePolicy(p TiePolicy) Option {
	return func(s *Scorer) {
		switch p {
		case TieTeamA, TieTeamB, TieNoPick:
			s.tie = p
		}
	}
}

// WithMaxConfidence caps the reported confidence. Values outside
// [50, 100) are ignored.
func WithMaxConfidence(c float64) Option {
	return func(s *Scorer) {
		if c >= baseConfidence && c < maxConfidenceCeiling {
			s.maxConfidence = c
		}
	}
}

// Verdict is the comparison of two stat results.
type Verdict struct {
	AggregateA float64
	AggregateB float64
	Pick       model.Side
	Confidence float64
	Tie        bool
}

// Scorer compares stat results by unweighted sum. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	tie           TiePolicy
	maxConfidence float64
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		tie:           TieTeamA,
		maxConfidence: defaultMaxConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TiePolicy returns the configured tie policy.
func (s *Scorer) TiePolicy() TiePolicy { return s.tie }

// MaxConfidence returns the configured confidence cap.
func (s *Scorer) MaxConfidence() float64 { return s.maxConfidence }

// Aggregate is the unweighted sum of a result's stat values.
func Aggregate(r model.StatResult) float64 {
	var sum float64
	for _, st := range r.Stats {
		sum += st.Value
	}
	return sum
}

// Compare picks the team with the strictly greater aggregate. Equal
// aggregates are resolved by the tie policy.
func (s *Scorer) Compare(a, b model.StatResult) Verdict {
	v := Verdict{AggregateA: Aggregate(a), AggregateB: Aggregate(b)}
	switch {
	case v.AggregateA > v.AggregateB:
		v.Pick = model.SideA
	case v.AggregateB > v.AggregateA:
		v.Pick = model.SideB
	default:
		v.Tie = true
		switch s.tie {
		case TieNoPick:
			return v
		case TieTeamB:
			v.Pick = model.SideB
		default:
			v.Pick = model.SideA
		}
		v.Confidence = baseConfidence
		return v
	}
	v.Confidence = s.confidence(v.AggregateA, v.AggregateB)
	return v
}

// confidence maps the relative aggregate gap onto [50, maxConfidence].
func (s *Scorer) confidence(a, b float64) float64 {
	denom := math.Abs(a) + math.Abs(b)
	if denom == 0 {
		return baseConfidence
	}
	c := baseConfidence + baseConfidence*math.Abs(a-b)/denom
	c = math.Round(c*confidencePrecision) / confidencePrecision
	return math.Max(baseConfidence, math.Min(s.maxConfidence, c))
}
