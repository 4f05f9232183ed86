package roster

import (
	"encoding/json"
	"regexp"
	"strings"
)

var numericID = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// PlayerID is a provider player identifier. It is serialized as a JSON
// number when it is numeric and as a string otherwise.
type PlayerID string

// MarshalJSON implements json.Marshaler.
func (id PlayerID) MarshalJSON() ([]byte, error) {
	if numericID.MatchString(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *PlayerID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PlayerID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = PlayerID(n.String())
	return nil
}

// Player is the canonical roster record. Exactly one Player exists per
// PlayerID in a roster snapshot.
type Player struct {
	PlayerID  PlayerID `json:"PlayerID"`
	FirstName string   `json:"FirstName"`
	LastName  string   `json:"LastName"`
	Team      string   `json:"Team"`
	Position  string   `json:"Position"`
	Status    string   `json:"Status"`
	Jersey    string   `json:"Jersey"`
	BirthDate string   `json:"BirthDate"`
	PhotoURL  string   `json:"photoUrl"`
}

// FullName joins first and last name.
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// NeedsEnrichment reports whether BirthDate or PhotoURL is missing.
func (p *Player) NeedsEnrichment() bool {
	return p.BirthDate == "" || p.PhotoURL == ""
}
