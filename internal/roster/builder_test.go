package roster

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/fortuna/gridiron/internal/ingest/sportsdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_DuplicateRowsCollapse(t *testing.T) {
	rows := []sportsdata.StatRow{
		{"PlayerID": json.Number("1"), "Name": "Joe Smith", "Position": "QB"},
		{"PlayerID": json.Number("1"), "Name": "Joe Smith", "Position": "QB"},
	}

	players := Build(rows)

	require.Len(t, players, 1)
	assert.Equal(t, PlayerID("1"), players[0].PlayerID)
	assert.Equal(t, "Joe", players[0].FirstName)
	assert.Equal(t, "Smith", players[0].LastName)
	assert.Equal(t, "QB", players[0].Position)
}

func TestBuild_FirstOccurrenceWinsAndOrderPreserved(t *testing.T) {
	rows := []sportsdata.StatRow{
		{"PlayerID": json.Number("7"), "Name": "First Seven", "Team": "KC"},
		{"PlayerID": json.Number("3"), "Name": "Only Three", "Team": "BUF"},
		{"PlayerID": json.Number("7"), "Name": "Second Seven", "Team": "DAL"},
		{"PlayerId": json.Number("9"), "Name": "Alt Spelling"},
	}

	players := Build(rows)

	require.Len(t, players, 3)
	assert.Equal(t, []PlayerID{"7", "3", "9"}, []PlayerID{players[0].PlayerID, players[1].PlayerID, players[2].PlayerID})
	assert.Equal(t, "KC", players[0].Team)
	assert.Equal(t, "First", players[0].FirstName)
}

func TestBuild_IdentifierResolution(t *testing.T) {
	tests := []struct {
		name   string
		row    sportsdata.StatRow
		wantID PlayerID
		skip   bool
	}{
		{"PlayerID wins", sportsdata.StatRow{"PlayerID": json.Number("1"), "PlayerId": json.Number("2")}, "1", false},
		{"PlayerId fallback", sportsdata.StatRow{"PlayerId": json.Number("2"), "playerId": json.Number("3")}, "2", false},
		{"playerId fallback", sportsdata.StatRow{"playerId": "abc-3"}, "abc-3", false},
		{"null id falls through", sportsdata.StatRow{"PlayerID": nil, "playerId": json.Number("4")}, "4", false},
		{"float id", sportsdata.StatRow{"PlayerID": float64(22)}, "22", false},
		{"no id", sportsdata.StatRow{"Name": "Ghost"}, "", true},
		{"blank id", sportsdata.StatRow{"PlayerID": "  "}, "", true},
		{"zero is a valid id", sportsdata.StatRow{"PlayerID": json.Number("0")}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := Build([]sportsdata.StatRow{tt.row})
			if tt.skip {
				assert.Empty(t, players)
				return
			}
			require.Len(t, players, 1)
			assert.Equal(t, tt.wantID, players[0].PlayerID)
		})
	}
}

func TestBuild_NameResolution(t *testing.T) {
	tests := []struct {
		name      string
		row       sportsdata.StatRow
		wantFirst string
		wantLast  string
	}{
		{"combined name split", sportsdata.StatRow{"Name": "Amon-Ra St. Brown"}, "Amon-Ra", "St. Brown"},
		{"explicit first and last", sportsdata.StatRow{"FirstName": "Patrick", "LastName": "Mahomes"}, "Patrick", "Mahomes"},
		{"explicit fields beat combined", sportsdata.StatRow{"Name": "P. Mahomes", "FirstName": "Patrick", "LastName": "Mahomes"}, "Patrick", "Mahomes"},
		{"missing last uses remainder", sportsdata.StatRow{"Name": "Joe Smith Jr.", "FirstName": "Joseph"}, "Joseph", "Smith Jr."},
		{"single token", sportsdata.StatRow{"Name": "Hurts"}, "Hurts", ""},
		{"no name", sportsdata.StatRow{}, "", ""},
		{"extra whitespace", sportsdata.StatRow{"Name": "  Josh   Allen "}, "Josh", "Allen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.row["PlayerID"] = json.Number("1")
			players := Build([]sportsdata.StatRow{tt.row})
			require.Len(t, players, 1)
			assert.Equal(t, tt.wantFirst, players[0].FirstName)
			assert.Equal(t, tt.wantLast, players[0].LastName)
		})
	}
}

func TestBuild_FieldDefaults(t *testing.T) {
	players := Build([]sportsdata.StatRow{
		{"PlayerID": json.Number("5"), "Name": "A B", "Jersey": json.Number("15"), "PhotoUrlSmall": "small.png", "PhotoUrlLarge": "large.png"},
		{"PlayerID": json.Number("6"), "Name": "C D", "Jersey": nil, "Team": []interface{}{"odd"}},
	})

	require.Len(t, players, 2)
	assert.Equal(t, "15", players[0].Jersey)
	assert.Equal(t, "large.png", players[0].PhotoURL)
	assert.Empty(t, players[1].Jersey)
	assert.Empty(t, players[1].Team)
	assert.Empty(t, players[1].BirthDate)
	assert.Empty(t, players[1].PhotoURL)
}

func TestBuild_Idempotent(t *testing.T) {
	var rows []sportsdata.StatRow
	for i := 0; i < 200; i++ {
		rows = append(rows, sportsdata.StatRow{
			"PlayerID": json.Number(fmt.Sprintf("%d", i%150)),
			"Name":     fmt.Sprintf("Player %d", i),
			"Team":     "NYJ",
		})
	}

	first, err := json.Marshal(Build(rows))
	require.NoError(t, err)
	second, err := json.Marshal(Build(rows))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Len(t, Build(rows), 150)
}

func TestPlayerID_JSON(t *testing.T) {
	data, err := json.Marshal([]PlayerID{"17", "abc", "-2.5"})
	require.NoError(t, err)
	assert.Equal(t, `[17,"abc",-2.5]`, string(data))

	var ids []PlayerID
	require.NoError(t, json.Unmarshal([]byte(`[17,"abc"]`), &ids))
	assert.Equal(t, []PlayerID{"17", "abc"}, ids)
}

func TestPlayer_NeedsEnrichment(t *testing.T) {
	assert.True(t, (&Player{}).NeedsEnrichment())
	assert.True(t, (&Player{BirthDate: "1990-01-01"}).NeedsEnrichment())
	assert.False(t, (&Player{BirthDate: "1990-01-01", PhotoURL: "x"}).NeedsEnrichment())
}
