package sportsdb

import "fmt"

// Player is one candidate record from searchplayers.php.
type Player struct {
	ID       string `json:"idPlayer"`
	Name     string `json:"strPlayer"`
	Sport    string `json:"strSport"`
	League   string `json:"strLeague"`
	Team     string `json:"strTeam"`
	Position string `json:"strPosition"`
	DateBorn string `json:"dateBorn"`
	Cutout   string `json:"strCutout"`
	Thumb    string `json:"strThumb"`
	Render   string `json:"strRender"`
	Fanart1  string `json:"strFanart1"`
}

// PhotoURL returns the first non-empty photo variant, preferring the cutout.
func (p Player) PhotoURL() string {
	for _, candidate := range []string{p.Cutout, p.Thumb, p.Render, p.Fanart1} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type searchResponse struct {
	Player []Player `json:"player"`
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sportsdb: unexpected status %d", e.StatusCode)
}
