// Package sport resolves a sport tag to the dataset and fields used to
// compare two teams of that sport.
//
// The set of sports is closed. Resolution never touches data; it only
// hands identifiers to a dataset loader.
package sport

import (
	"fmt"
	"strings"

	"github.com/okian/puddin/internal/domain/types"
)

// Tag identifies a supported sport, e.g. "MLB".
type Tag string

// Supported sport tags.
const (
	MLB Tag = "MLB"
	NBA Tag = "NBA"
	NHL Tag = "NHL"
	NFL Tag = "NFL"
)

// FieldSet is the ordered list of statistical columns compared for a sport.
type FieldSet []string

// Definition describes how a sport's dataset is located and read.
type Definition struct {
	Tag         Tag      `json:"sport"`
	Dataset     string   `json:"dataset"`
	TeamColumn  string   `json:"team_column"`
	Fields      FieldSet `json:"fields"`
	Description string   `json:"description"`
}

// definitions is ordered; Supported() and sync iterate in this order.
var definitions = []Definition{
	{
		Tag:         MLB,
		Dataset:     "MLB_6_stats_summary.xlsx",
		TeamColumn:  "Team",
		Fields:      FieldSet{"wOBA", "xFIP", "Barrel %"},
		Description: "Major League Baseball team batting and pitching summary",
	},
	{
		Tag:         NBA,
		Dataset:     "NBA_stats_summary.xlsx",
		TeamColumn:  "Team",
		Fields:      FieldSet{"ORtg", "eFG%", "TS%"},
		Description: "NBA team efficiency summary",
	},
	{
		Tag:         NHL,
		Dataset:     "NHL_stats_summary.xlsx",
		TeamColumn:  "Team",
		Fields:      FieldSet{"GF/GP", "SV%", "PP%"},
		Description: "NHL team scoring and special teams summary",
	},
	{
		Tag:         NFL,
		Dataset:     "NFL_stats_summary.xlsx",
		TeamColumn:  "Team",
		Fields:      FieldSet{"Off EPA/play", "Def EPA/play", "Turnover Diff"},
		Description: "NFL team efficiency summary",
	},
}

// Resolver maps sport tags to definitions. The zero value is not usable;
// build one with NewResolver.
type Resolver struct {
	byTag map[Tag]Definition
	order []Tag
}

// NewResolver returns a resolver over the built-in sports. overrides maps a
// sport tag to a dataset locator that replaces the default dataset name;
// keys that are not supported sports, or that name the same sport twice, are
// rejected.
func NewResolver(overrides map[string]string) (*Resolver, error) {
	const op = "sport.new_resolver"
	r := &Resolver{byTag: make(map[Tag]Definition, len(definitions))}
	for _, d := range definitions {
		d.Fields = append(FieldSet(nil), d.Fields...)
		r.byTag[d.Tag] = d
		r.order = append(r.order, d.Tag)
	}
	seen := make(map[Tag]string, len(overrides))
	for key, locator := range overrides {
		tag := normalize(key)
		if prev, dup := seen[tag]; dup {
			return nil, types.E(op, types.KindInvalidInput,
				fmt.Errorf("dataset overrides %q and %q both name %s", prev, key, tag))
		}
		seen[tag] = key
		d, ok := r.byTag[tag]
		if !ok {
			return nil, types.E(op, types.KindUnsupportedSport, fmt.Errorf("dataset override for unknown sport %q", key))
		}
		if strings.TrimSpace(locator) == "" {
			return nil, types.E(op, types.KindInvalidInput, fmt.Errorf("empty dataset locator for %s", tag))
		}
		d.Dataset = strings.TrimSpace(locator)
		r.byTag[tag] = d
	}
	return r, nil
}

// Resolve returns the definition for a sport tag. Tags are matched
// case-insensitively after trimming.
func (r *Resolver) Resolve(tag string) (Definition, error) {
	const op = "sport.resolve"
	if strings.TrimSpace(tag) == "" {
		return Definition{}, types.E(op, types.KindInvalidInput, fmt.Errorf("missing sport"))
	}
	d, ok := r.byTag[normalize(tag)]
	if !ok {
		return Definition{}, types.E(op, types.KindUnsupportedSport,
			fmt.Errorf("sport %q is not supported (supported: %s)", tag, strings.Join(r.tags(), ", ")))
	}
	d.Fields = append(FieldSet(nil), d.Fields...)
	return d, nil
}

// Supported lists every definition in a stable order.
func (r *Resolver) Supported() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, t := range r.order {
		d := r.byTag[t]
		d.Fields = append(FieldSet(nil), d.Fields...)
		out = append(out, d)
	}
	return out
}

func (r *Resolver) tags() []string {
	out := make([]string, len(r.order))
	for i, t := range r.order {
		out[i] = string(t)
	}
	return out
}

func normalize(tag string) Tag {
	return Tag(strings.ToUpper(strings.TrimSpace(tag)))
}
