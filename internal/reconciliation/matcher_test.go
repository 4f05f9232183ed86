package reconciliation

import (
	"testing"

	"github.com/fortuna/gridiron/internal/ingest/sportsdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBest(t *testing.T) {
	m := NewMatcher(NFL)

	tests := []struct {
		name       string
		candidates []sportsdb.Player
		fullName   string
		wantID     string
		wantOK     bool
	}{
		{
			name:   "empty list",
			wantOK: false,
		},
		{
			name: "wrong sport filtered out",
			candidates: []sportsdb.Player{
				{ID: "1", Name: "Joe Smith", Sport: "Ice Hockey", League: "NHL"},
				{ID: "2", Name: "Joe Smith", Sport: "Soccer", League: "English Premier League"},
			},
			fullName: "Joe Smith",
			wantOK:   false,
		},
		{
			name: "league token is a case-insensitive substring",
			candidates: []sportsdb.Player{
				{ID: "1", Name: "Joe Smith", Sport: "american football", League: "NFL Europe"},
			},
			fullName: "Joe Smith",
			wantID:   "1",
			wantOK:   true,
		},
		{
			name: "sport must match exactly",
			candidates: []sportsdb.Player{
				{ID: "1", Name: "Joe Smith", Sport: "American Football League", League: "NFL"},
			},
			fullName: "Joe Smith",
			wantOK:   false,
		},
		{
			name: "exact name beats earlier candidate",
			candidates: []sportsdb.Player{
				{ID: "1", Name: "Joey Smith", Sport: "American Football", League: "NFL"},
				{ID: "2", Name: "JOE SMITH", Sport: "American Football", League: "NFL"},
			},
			fullName: "Joe Smith",
			wantID:   "2",
			wantOK:   true,
		},
		{
			name: "no exact name falls back to first filtered",
			candidates: []sportsdb.Player{
				{ID: "1", Name: "Joe Smith", Sport: "Baseball", League: "MLB"},
				{ID: "2", Name: "Joseph Smith", Sport: "American Football", League: "NFL"},
				{ID: "3", Name: "Jo Smith", Sport: "American Football", League: "NFL"},
			},
			fullName: "Joe Smith",
			wantID:   "2",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.SelectBest(tt.candidates, tt.fullName)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
