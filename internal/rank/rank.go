// file: internal/rank/rank.go

// Package rank maps cumulative point totals to ordered rank labels. All
// functions are pure and safe for concurrent use.
package rank

// Rank is an ordered label derived from a point total. Level is the 1-based
// position in the scale.
type Rank struct {
	Label     string
	Level     int
	MinPoints int64
}

// Threshold pairs a label with the minimum total required to hold it.
type Threshold struct {
	Label     string
	MinPoints int64
}

// Scale is an ascending list of thresholds. The highest threshold not
// exceeding the total wins.
type Scale []Threshold

// For returns the rank for the given total. Totals below the first threshold
// clamp to it.
func (s Scale) For(totalPoints int64) Rank {
	best := 0
	for i, t := range s {
		if totalPoints >= t.MinPoints {
			best = i
		}
	}
	return Rank{Label: s[best].Label, Level: best + 1, MinPoints: s[best].MinPoints}
}

// UserScale is the rank ladder for individual volunteers.
var UserScale = Scale{
	{Label: "Beginner", MinPoints: 0},
	{Label: "Contributor", MinPoints: 500},
	{Label: "Leader", MinPoints: 1500},
	{Label: "Champion", MinPoints: 3000},
	{Label: "Legend", MinPoints: 5000},
}

// CommunityScale is the tier ladder for communities.
var CommunityScale = Scale{
	{Label: "Bronze", MinPoints: 0},
	{Label: "Silver", MinPoints: 1000},
	{Label: "Gold", MinPoints: 2500},
	{Label: "Platinum", MinPoints: 5000},
	{Label: "Diamond", MinPoints: 10000},
}

// ForUser returns the user-scope rank for a total.
func ForUser(totalPoints int64) Rank {
	return UserScale.For(totalPoints)
}

// ForCommunity returns the community-scope tier for a total.
func ForCommunity(totalPoints int64) Rank {
	return CommunityScale.For(totalPoints)
}
