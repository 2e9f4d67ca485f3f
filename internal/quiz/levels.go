package quiz

import (
	"fmt"
	"math"
)

// Tier is one row of a LevelTable. Percentages up to and including
// UpTo map to Label.
type Tier struct {
	UpTo  int
	Label string
}

// LevelTable maps a percentage to a proficiency label. Tiers are in
// ascending UpTo order; Top labels everything above the last tier.
type LevelTable struct {
	Tiers []Tier
	Top   string
}

// DefaultLevelTable is the CEFR-style table used when none is configured.
func DefaultLevelTable() LevelTable {
	return LevelTable{
		Tiers: []Tier{
			{UpTo: 20, Label: "A1"},
			{UpTo: 35, Label: "A2"},
			{UpTo: 50, Label: "B1"},
			{UpTo: 65, Label: "B2"},
			{UpTo: 80, Label: "C1"},
		},
		Top: "C2",
	}
}

// Validate checks that tiers ascend strictly and every label is set.
func (t LevelTable) Validate() error {
	if t.Top == "" {
		return fmt.Errorf("level table: top label is empty")
	}
	prev := -1
	for i, tier := range t.Tiers {
		if tier.Label == "" {
			return fmt.Errorf("level table: tier %d has no label", i)
		}
		if tier.UpTo <= prev {
			return fmt.Errorf("level table: tier %d bound %d not above %d", i, tier.UpTo, prev)
		}
		prev = tier.UpTo
	}
	return nil
}

// Classify returns the label for a percentage. Boundaries belong to the
// lower tier.
func (t LevelTable) Classify(percentage int) string {
	for _, tier := range t.Tiers {
		if percentage <= tier.UpTo {
			return tier.Label
		}
	}
	return t.Top
}

// Percentage returns round(100 × score / total), or 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
