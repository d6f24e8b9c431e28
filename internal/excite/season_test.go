package excite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOffSeason(t *testing.T) {
	tests := []struct {
		dateRange string
		offSeason bool
	}{
		{"2024-11-06 to 2024-11-12", true},  // first off-season day
		{"2024-11-05 to 2024-11-11", false}, // last in-season day
		{"2024-12-25 to 2024-12-31", true},
		{"2025-01-01 to 2025-01-07", true},
		{"2025-02-14 to 2025-02-20", true},
		{"2024-03-17 to 2024-03-23", true},  // last off-season day
		{"2024-03-18 to 2024-03-24", false}, // opening stretch
		{"2024-07-01 to 2024-07-07", false},
		{"1971-11-06 to 1971-11-12", true}, // year never matters
	}

	for _, tt := range tests {
		assert.Equal(t, tt.offSeason, IsOffSeason(tt.dateRange), tt.dateRange)
	}
}

func TestFilterOffSeason_DropsAndPreservesOrder(t *testing.T) {
	missed := []string{
		"2024-03-18 to 2024-03-24",
		"2024-11-06 to 2024-11-12",
		"2024-07-01 to 2024-07-07",
		"2024-03-17 to 2024-03-23",
		"2024-09-30 to 2024-10-06",
	}

	filtered := FilterOffSeason(missed)

	expected := []string{
		"2024-03-18 to 2024-03-24",
		"2024-07-01 to 2024-07-07",
		"2024-09-30 to 2024-10-06",
	}
	assert.Equal(t, expected, filtered)
}

func TestFilterOffSeason_Empty(t *testing.T) {
	assert.Empty(t, FilterOffSeason(nil))
}
