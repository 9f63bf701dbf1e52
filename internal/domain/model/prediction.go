package model

// TeamQuery is a validated prediction request: a sport tag and two
// non-empty team fragments.
type TeamQuery struct {
	Sport string
	TeamA string
	TeamB string
}

// Stat is one named numeric field for a team.
type Stat struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
}

// StatResult holds the requested fields, in request order, for one matched
// team. Row is the matched record's position in its dataset.
type StatResult struct {
	Team  string `json:"team"`
	Row   int    `json:"-"`
	Stats []Stat `json:"stats"`
}

// Value returns the value of field, if present.
func (r StatResult) Value(field string) (float64, bool) {
	for _, s := range r.Stats {
		if s.Field == field {
			return s.Value, true
		}
	}
	return 0, false
}

// Side names one of the two teams of a query.
type Side string

// Sides of a matchup.
const (
	SideNone Side = ""
	SideA    Side = "team_a"
	SideB    Side = "team_b"
)

// TeamSummary is one team's part of an outcome.
type TeamSummary struct {
	Query     string     `json:"query"`
	Result    StatResult `json:"result"`
	Aggregate float64    `json:"aggregate"`
}

// Outcome is the result of comparing two teams. When Tie is true and the
// tie policy made no pick, Pick is SideNone and Confidence is zero.
type Outcome struct {
	Sport      string      `json:"sport"`
	Dataset    string      `json:"dataset"`
	Game       string      `json:"game"`
	TeamA      TeamSummary `json:"team_a"`
	TeamB      TeamSummary `json:"team_b"`
	Pick       Side        `json:"pick,omitempty"`
	PickTeam   string      `json:"pick_team,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Tie        bool        `json:"tie"`
}

// Picked reports whether the outcome names a winner.
func (o Outcome) Picked() bool { return o.Pick != SideNone }
