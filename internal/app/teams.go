package service

import (
	"fmt"
	"strings"

	"github.com/okian/puddin/internal/domain/types"
)

// DefaultTeamSeparator splits a combined "A vs. B" teams string.
const DefaultTeamSeparator = " vs. "

// ParseTeams returns the two team fragments of a request. Callers pass
// either teamA and teamB or a combined teams string, never both. The
// combined form must contain sep exactly once with text on both sides.
func ParseTeams(teamA, teamB, teams, sep string) (string, string, error) {
	const op = "service.parse_teams"
	if sep == "" {
		sep = DefaultTeamSeparator
	}
	a, b, combined := strings.TrimSpace(teamA), strings.TrimSpace(teamB), strings.TrimSpace(teams)

	switch {
	case combined != "" && (a != "" || b != ""):
		return "", "", types.E(op, types.KindInvalidInput,
			fmt.Errorf("give either team_a and team_b or teams, not both"))
	case combined != "":
		if n := strings.Count(teams, sep); n != 1 {
			return "", "", types.E(op, types.KindInvalidInput,
				fmt.Errorf("teams %q must contain %q exactly once", teams, sep))
		}
		parts := strings.SplitN(teams, sep, 2)
		a, b = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if a == "" || b == "" {
			return "", "", types.E(op, types.KindInvalidInput,
				fmt.Errorf("teams %q needs a team on each side of %q", teams, sep))
		}
	case a == "" || b == "":
		return "", "", types.E(op, types.KindInvalidInput, fmt.Errorf("both team_a and team_b are required"))
	}
	return a, b, nil
}
