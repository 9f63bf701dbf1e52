// Package matcher resolves a free-text team fragment to a dataset row and
// extracts the requested stat fields from it.
package matcher

import (
	"fmt"
	"strings"

	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/internal/domain/model"
	"github.com/okian/puddin/internal/domain/types"
)

// Status tags the outcome of a lookup.
type Status int

// Lookup outcomes.
const (
	NotFound Status = iota
	Unique
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Candidate is a matching record and its position in the dataset.
type Candidate struct {
	Row    int
	Record dataset.Record
}

// Match is the tagged result of Find. Candidates are in dataset order; for
// Unique there is exactly one, for NotFound there are none.
type Match struct {
	Status     Status
	Fragment   string
	Candidates []Candidate
}

// Policy decides what an ambiguous match means.
type Policy string

// Supported ambiguity policies.
const (
	// FirstMatch takes the first candidate in dataset order.
	FirstMatch Policy = "first_match"
	// RejectAmbiguous fails the request with AmbiguousTeam.
	RejectAmbiguous Policy = "reject_ambiguous"
)

// ParsePolicy validates a configured policy name. Empty means FirstMatch.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FirstMatch, nil
	case FirstMatch, RejectAmbiguous:
		return p, nil
	}
	return "", fmt.Errorf("unknown ambiguity policy %q", s)
}

// Find returns every record whose teamColumn contains fragment,
// case-insensitively. The fragment is trimmed; callers reject empty
// fragments before matching.
func Find(ds *dataset.Dataset, teamColumn, fragment string) Match {
	m := Match{Status: NotFound, Fragment: fragment}
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if ds == nil || needle == "" {
		return m
	}
	for i, rec := range ds.Records {
		name := strings.ToLower(dataset.Text(rec[teamColumn]))
		if strings.Contains(name, needle) {
			m.Candidates = append(m.Candidates, Candidate{Row: i, Record: rec})
		}
	}
	switch len(m.Candidates) {
	case 0:
		m.Status = NotFound
	case 1:
		m.Status = Unique
	default:
		m.Status = Ambiguous
	}
	return m
}

// Select applies policy to a match and returns the chosen candidate.
func Select(m Match, teamColumn string, policy Policy) (Candidate, error) {
	const op = "matcher.select"
	switch m.Status {
	case Unique:
		return m.Candidates[0], nil
	case Ambiguous:
		if policy == RejectAmbiguous {
			names := make([]string, 0, len(m.Candidates))
			for _, c := range m.Candidates {
				names = append(names, dataset.Text(c.Record[teamColumn]))
			}
			return Candidate{}, types.E(op, types.KindAmbiguousTeam,
				fmt.Errorf("team %q matches %d teams: %s", m.Fragment, len(names), strings.Join(names, ", ")))
		}
		return m.Candidates[0], nil
	default:
		return Candidate{}, types.E(op, types.KindTeamNotFound, fmt.Errorf("no team matches %q", m.Fragment))
	}
}

// Extract returns exactly fields, in order, from the candidate's record. A
// missing or non-numeric field means the upstream data broke its contract.
func Extract(c Candidate, teamColumn string, fields []string) (model.StatResult, error) {
	const op = "matcher.extract"
	team := dataset.Text(c.Record[teamColumn])
	res := model.StatResult{Team: team, Row: c.Row, Stats: make([]model.Stat, 0, len(fields))}
	for _, f := range fields {
		raw, ok := c.Record[f]
		if !ok {
			return model.StatResult{}, types.E(op, types.KindDatasetUnavailable,
				fmt.Errorf("team %q has no value for field %q", team, f))
		}
		v, err := dataset.Float(raw)
		if err != nil {
			return model.StatResult{}, types.E(op, types.KindDatasetUnavailable,
				fmt.Errorf("team %q field %q: %w", team, f, err))
		}
		res.Stats = append(res.Stats, model.Stat{Field: f, Value: v})
	}
	return res, nil
}

// Lookup runs Find, Select and Extract in sequence and also returns the
// raw match so callers can record its status.
func Lookup(ds *dataset.Dataset, teamColumn, fragment string, fields []string, policy Policy) (model.StatResult, Match, error) {
	m := Find(ds, teamColumn, fragment)
	c, err := Select(m, teamColumn, policy)
	if err != nil {
		return model.StatResult{}, m, err
	}
	res, err := Extract(c, teamColumn, fields)
	return res, m, err
}
