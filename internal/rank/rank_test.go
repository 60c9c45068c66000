// file: internal/rank/rank_test.go
package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForUserBoundaries(t *testing.T) {
	tests := []struct {
		total int64
		label string
		level int
	}{
		{0, "Beginner", 1},
		{499, "Beginner", 1},
		{500, "Contributor", 2},
		{1499, "Contributor", 2},
		{1500, "Leader", 3},
		{2999, "Leader", 3},
		{3000, "Champion", 4},
		{4999, "Champion", 4},
		{5000, "Legend", 5},
		{1_000_000, "Legend", 5},
	}

	for _, tt := range tests {
		got := ForUser(tt.total)
		assert.Equal(t, tt.label, got.Label, "total=%d", tt.total)
		assert.Equal(t, tt.level, got.Level, "total=%d", tt.total)
	}
}

func TestForCommunityBoundaries(t *testing.T) {
	tests := []struct {
		total int64
		label string
	}{
		{0, "Bronze"},
		{999, "Bronze"},
		{1000, "Silver"},
		{2499, "Silver"},
		{2500, "Gold"},
		{4999, "Gold"},
		{5000, "Platinum"},
		{9999, "Platinum"},
		{10000, "Diamond"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, ForCommunity(tt.total).Label, "total=%d", tt.total)
	}
}

func TestNegativeTotalClampsToFirstThreshold(t *testing.T) {
	got := ForUser(-50)
	assert.Equal(t, "Beginner", got.Label)
	assert.Equal(t, 1, got.Level)
}

func TestLevelNeverDecreasesUnderPositiveAwards(t *testing.T) {
	total := int64(0)
	prev := ForUser(total).Level
	for _, delta := range []int64{70, 430, 1, 999, 1500, 2000} {
		total += delta
		cur := ForUser(total).Level
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
