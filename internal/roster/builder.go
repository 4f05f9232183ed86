// Package roster turns raw provider stat rows into canonical players.
package roster

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fortuna/gridiron/internal/ingest/sportsdata"
)

// Field spellings tried in priority order.
var (
	playerIDKeys = []string{"PlayerID", "PlayerId", "playerId"}
	photoKeys    = []string{"PhotoUrl", "PhotoUrlLarge", "PhotoUrlSmall"}
)

// Build deduplicates rows by player identifier and normalizes them into
// players. Rows without an identifier are skipped; the first row seen for an
// identifier wins. Output keeps first-seen order. Build does no I/O.
func Build(rows []sportsdata.StatRow) []Player {
	seen := make(map[PlayerID]struct{}, len(rows))
	players := make([]Player, 0, len(rows))

	for _, row := range rows {
		id, ok := resolvePlayerID(row)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		first, last := resolveName(row)

		players = append(players, Player{
			PlayerID:  id,
			FirstName: first,
			LastName:  last,
			Team:      extractString(row, "Team"),
			Position:  extractString(row, "Position"),
			Status:    extractString(row, "Status"),
			Jersey:    extractString(row, "Jersey"),
			BirthDate: extractString(row, "BirthDate"),
			PhotoURL:  firstString(row, photoKeys...),
		})
	}

	return players
}

func resolvePlayerID(row sportsdata.StatRow) (PlayerID, bool) {
	id := strings.TrimSpace(firstString(row, playerIDKeys...))
	if id == "" {
		return "", false
	}
	return PlayerID(id), true
}

// resolveName prefers explicit FirstName/LastName and otherwise splits the
// combined name into its first token and the remainder.
func resolveName(row sportsdata.StatRow) (string, string) {
	first := strings.TrimSpace(extractString(row, "FirstName"))
	last := strings.TrimSpace(extractString(row, "LastName"))

	fullName := strings.TrimSpace(extractString(row, "Name"))
	if fullName == "" {
		fullName = strings.TrimSpace(first + " " + last)
	}
	parts := strings.Fields(fullName)

	if first == "" && len(parts) > 0 {
		first = parts[0]
	}
	if last == "" && len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}

	return first, last
}

func firstString(row sportsdata.StatRow, keys ...string) string {
	for _, key := range keys {
		if v := extractString(row, key); v != "" {
			return v
		}
	}
	return ""
}

// extractString renders scalar values as text; anything else is "".
func extractString(row sportsdata.StatRow, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
