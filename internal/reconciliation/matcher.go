package reconciliation

import (
	"strings"

	"github.com/fortuna/gridiron/internal/ingest/sportsdb"
)

// Criteria restricts which secondary candidates can describe a roster player.
type Criteria struct {
	// Sport must equal the candidate's strSport (case-insensitive).
	Sport string
	// League must be contained in the candidate's strLeague (case-insensitive).
	League string
}

// NFL matches American Football players in any league whose name contains "nfl".
var NFL = Criteria{Sport: "American Football", League: "nfl"}

// Matcher picks the secondary record that best matches a roster player.
type Matcher struct {
	sport  string
	league string
}

// NewMatcher creates a matcher for the given criteria.
func NewMatcher(criteria Criteria) *Matcher {
	return &Matcher{
		sport:  strings.ToLower(strings.TrimSpace(criteria.Sport)),
		league: strings.ToLower(strings.TrimSpace(criteria.League)),
	}
}

// SelectBest filters candidates by sport and league, then returns the one
// whose name equals fullName (case-insensitive). Without an exact name match
// it returns the first filtered candidate in provider order; there is no
// scoring by team, position or number.
func (m *Matcher) SelectBest(candidates []sportsdb.Player, fullName string) (*sportsdb.Player, bool) {
	target := strings.TrimSpace(fullName)

	var first *sportsdb.Player
	for i := range candidates {
		candidate := &candidates[i]
		if !m.eligible(candidate) {
			continue
		}

		if strings.EqualFold(candidate.Name, target) {
			return candidate, true
		}
		if first == nil {
			first = candidate
		}
	}

	if first == nil {
		return nil, false
	}
	return first, true
}

func (m *Matcher) eligible(candidate *sportsdb.Player) bool {
	sport := strings.ToLower(candidate.Sport)
	league := strings.ToLower(candidate.League)
	return sport == m.sport && strings.Contains(league, m.league)
}
