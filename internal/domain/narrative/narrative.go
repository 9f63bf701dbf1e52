// Package narrative renders a prediction outcome as the host's talk-show
// lines returned alongside the structured result.
package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/puddin/internal/domain/model"
)

// Default voice lines.
const (
	DefaultHost      = "Scott Ferrall"
	DefaultFire      = "Ferrall’s Fire: We’re bringing the heat today, folks!"
	DefaultFinalWord = "Ferrall’s Final Word: Trust the numbers and ride the hot hand!"
)

// Lines is the rendered narrative of one prediction.
type Lines struct {
	Intro     string `json:"intro"`
	Game      string `json:"game"`
	Fire      string `json:"fire"`
	FileStats string `json:"file_stats"`
	Pick      string `json:"pick"`
	FinalWord string `json:"final_word"`
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithHost sets the name used in the intro line.
func WithHost(host string) Option {
	return func(n *Narrator) {
		if strings.TrimSpace(host) != "" {
			n.host = host
		}
	}
}

// WithFire sets the static fire line.
func WithFire(line string) Option {
	return func(n *Narrator) {
		if strings.TrimSpace(line) != "" {
			n.fire = line
		}
	}
}

// WithFinalWord sets the static closing line.
func WithFinalWord(line string) Option {
	return func(n *Narrator) {
		if strings.TrimSpace(line) != "" {
			n.finalWord = line
		}
	}
}

// Narrator renders outcomes. It is immutable after construction.
type Narrator struct {
	host      string
	fire      string
	finalWord string
}

// New creates a Narrator with the default voice.
func New(opts ...Option) *Narrator {
	n := &Narrator{host: DefaultHost, fire: DefaultFire, finalWord: DefaultFinalWord}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Render builds every line for o.
func (n *Narrator) Render(o model.Outcome) Lines {
	return Lines{
		Intro:     fmt.Sprintf("I’m %s, diving into ALL files for %s FIRST!", n.host, o.Sport),
		Game:      "Game: " + o.Game,
		Fire:      n.fire,
		FileStats: FileStats(o),
		Pick:      Pick(o),
		FinalWord: n.finalWord,
	}
}

// FileStats lists both teams' fields and names the dataset they came from.
func FileStats(o model.Outcome) string {
	return fmt.Sprintf("%s (%s) vs. %s (%s) - (from %s)",
		o.TeamA.Result.Team, statList(o.TeamA.Result),
		o.TeamB.Result.Team, statList(o.TeamB.Result),
		o.Dataset)
}

// Pick states the winner and confidence, or that the game is a toss-up.
func Pick(o model.Outcome) string {
	if !o.Picked() {
		return fmt.Sprintf("The Pick: No edge, %s and %s are dead even.",
			o.TeamA.Result.Team, o.TeamB.Result.Team)
	}
	return fmt.Sprintf("The Pick: %s wins with %s%% confidence.",
		o.PickTeam, strconv.FormatFloat(o.Confidence, 'f', -1, 64))
}

func statList(r model.StatResult) string {
	parts := make([]string, 0, len(r.Stats))
	for _, s := range r.Stats {
		parts = append(parts, s.Field+": "+Number(s.Value))
	}
	return strings.Join(parts, ", ")
}

// Number formats a stat the way box scores print it: shortest decimal
// form, with the leading zero dropped for rate stats such as ".341".
func Number(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v != 0 && math.Abs(v) < 1 {
		s = strings.Replace(s, "0.", ".", 1)
	}
	return s
}
