package scoring

import "github.com/mind-engage/formbuilder/internal/form"

// Rules is the pass/fail configuration of a form.
type Rules struct {
	PassingScore int
	UseTiers     bool
	Tiers        []form.ScoreTier
}

func RulesFor(f form.Form) Rules {
	return Rules{PassingScore: f.PassingScore, UseTiers: f.UseTiers, Tiers: f.Tiers}
}

type Outcome struct {
	Total  int             `json:"total_score"`
	Passed bool            `json:"passed"`
	Tier   *form.ScoreTier `json:"tier,omitempty"`
}

// Evaluate decides pass/fail for a total. In tier mode the first tier whose
// inclusive range holds total is picked and its Qualifies flag is the
// verdict; a total no tier covers fails without a tier. Without tiers the
// flat passing score decides.
func Evaluate(total int, r Rules) Outcome {
	out := Outcome{Total: total}
	if r.UseTiers && len(r.Tiers) > 0 {
		if t, ok := MatchTier(total, r.Tiers); ok {
			out.Tier = &t
			out.Passed = t.Qualifies
		}
		return out
	}
	out.Passed = total >= r.PassingScore
	return out
}

// MatchTier returns the first tier containing total.
func MatchTier(total int, tiers []form.ScoreTier) (form.ScoreTier, bool) {
	for _, t := range tiers {
		if total >= t.MinScore && total <= t.MaxScore {
			return t, true
		}
	}
	return form.ScoreTier{}, false
}
