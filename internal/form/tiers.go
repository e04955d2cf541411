package form

import (
	"fmt"
	"sort"
)

// CheckTiers reports inverted, overlapping and gapped score ranges. The
// result is advisory: tiers are saved as given and the first match wins when
// ranges overlap.
func CheckTiers(tiers []ScoreTier) []string {
	var warnings []string
	sorted := make([]ScoreTier, 0, len(tiers))
	for _, t := range tiers {
		if t.MinScore > t.MaxScore {
			warnings = append(warnings, fmt.Sprintf("tier %q: min_score %d is above max_score %d", t.Label, t.MinScore, t.MaxScore))
			continue
		}
		sorted = append(sorted, t)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinScore < sorted[j].MinScore })
	if len(sorted) == 0 {
		return warnings
	}
	// reach is the tier extending furthest so far; tiers nested in it leave no gap.
	reach := sorted[0]
	for _, cur := range sorted[1:] {
		switch {
		case cur.MinScore <= reach.MaxScore:
			warnings = append(warnings, fmt.Sprintf("tiers %q and %q overlap on %d..%d", reach.Label, cur.Label, cur.MinScore, min(reach.MaxScore, cur.MaxScore)))
		case cur.MinScore > reach.MaxScore+1:
			warnings = append(warnings, fmt.Sprintf("no tier covers scores %d..%d", reach.MaxScore+1, cur.MinScore-1))
		}
		if cur.MaxScore > reach.MaxScore {
			reach = cur
		}
	}
	return warnings
}

// MaxScore is the best total a respondent can reach: the highest option of
// every choice question, or the sum of all positive options for multiple choice.
func MaxScore(elements []Element) int {
	total := 0
	for _, e := range elements {
		if !e.IsQuestion() || len(e.Options) == 0 {
			continue
		}
		if e.AnswerType == AnswerMultipleChoice {
			for _, o := range e.Options {
				if o.Points > 0 {
					total += o.Points
				}
			}
			continue
		}
		best := e.Options[0].Points
		for _, o := range e.Options[1:] {
			best = max(best, o.Points)
		}
		total += best
	}
	return total
}
