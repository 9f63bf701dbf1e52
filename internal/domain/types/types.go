// Package types contains common types used across the application
package types

import (
	"errors"
	"strings"
)

// Kind classifies a failure so callers (HTTP, logs, metrics) can react
// without inspecting messages.
type Kind string

// Failure kinds surfaced by the prediction core.
const (
	KindUnknown            Kind = ""
	KindInvalidInput       Kind = "invalid_input"
	KindUnsupportedSport   Kind = "unsupported_sport"
	KindTeamNotFound       Kind = "team_not_found"
	KindAmbiguousTeam      Kind = "ambiguous_team"
	KindDatasetUnavailable Kind = "dataset_unavailable"
)

// Sentinel kinds usable with errors.Is.
var (
	ErrInvalidInput       = &kindError{kind: KindInvalidInput}
	ErrUnsupportedSport   = &kindError{kind: KindUnsupportedSport}
	ErrTeamNotFound       = &kindError{kind: KindTeamNotFound}
	ErrAmbiguousTeam      = &kindError{kind: KindAmbiguousTeam}
	ErrDatasetUnavailable = &kindError{kind: KindDatasetUnavailable}
)

type kindError struct {
	kind Kind
}

func (k *kindError) Error() string { return strings.ReplaceAll(string(k.kind), "_", " ") }

// Error is a classified failure with the operation that produced it.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E builds a classified error. err may be nil.
func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(sentinel(e.Kind).Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against the kind sentinels.
func (e *Error) Is(target error) bool {
	k, ok := target.(*kindError)
	return ok && k.kind == e.Kind
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k *kindError
	if errors.As(err, &k) {
		return k.kind
	}
	return KindUnknown
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindUnsupportedSport:
		return ErrUnsupportedSport
	case KindTeamNotFound:
		return ErrTeamNotFound
	case KindAmbiguousTeam:
		return ErrAmbiguousTeam
	case KindDatasetUnavailable:
		return ErrDatasetUnavailable
	default:
		return errors.New("unclassified error")
	}
}
