package display

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// StateLabel is the status bar name of a session state.
func StateLabel(s domain.SessionState) string {
	switch s {
	case domain.StateLoadingDetails:
		return "Preparing recipe"
	case domain.StateIntro:
		return "Introduction"
	case domain.StateIngredients:
		return "Ingredients"
	case domain.StateCooking:
		return "Cooking"
	case domain.StateFinished:
		return "Finished"
	case domain.StateGrading:
		return "Grading"
	case domain.StateGradingResult:
		return "Result"
	case domain.StateFailed:
		return "Failed"
	case domain.StateClosed:
		return "Closed"
	}
	return s.String()
}

// Progress is the fraction of steps reached while cooking, in [0, 1].
func Progress(snap domain.Snapshot) float64 {
	if snap.StepCount <= 0 {
		return 0
	}
	p := float64(snap.StepIndex+1) / float64(snap.StepCount)
	return min(max(p, 0), 1)
}

// Describe returns the styled scrollback lines for what changed between
// prev and cur. prev is nil for the first snapshot. imagePath may be nil.
func Describe(prev *domain.Snapshot, cur domain.Snapshot, imagePath func(string) string) []string {
	var out []string

	moved := prev == nil || prev.State != cur.State || prev.StepIndex != cur.StepIndex
	if moved && prev != nil && prev.State == domain.StateGrading && cur.State == domain.StateFinished {
		out = append(out, indented(alertStyle, "Grading did not work out, you can try again."))
	}
	if moved {
		out = append(out, describeState(cur)...)
	}

	// Newly resolved images, in a stable order.
	var fresh []string
	for prompt := range cur.Visuals {
		if prev != nil {
			if _, ok := prev.Visuals[prompt]; ok {
				continue
			}
		}
		fresh = append(fresh, prompt)
	}
	sort.Strings(fresh)
	for _, prompt := range fresh {
		if cur.Visuals[prompt] == "" {
			out = append(out, indented(dimStyle, "[image unavailable] "+prompt))
			continue
		}
		where := "ready"
		if imagePath != nil {
			if p := imagePath(prompt); p != "" {
				where = p
			}
		}
		out = append(out, indented(dimStyle, "[image] "+prompt+" -> "+where))
	}
	return out
}

func describeState(s domain.Snapshot) []string {
	d := s.Detail
	switch s.State {
	case domain.StateLoadingDetails:
		return []string{indented(voiceStyle, "Preparing "+s.RecipeName+"...")}

	case domain.StateIntro:
		out := []string{indented(headingStyle, d.Name)}
		if d.Description != "" {
			out = append(out, indented(dimStyle, d.Description))
		}
		meta := ""
		if d.Difficulty != "" {
			meta = string(d.Difficulty)
		}
		if d.Time != "" {
			if meta != "" {
				meta += " · "
			}
			meta += d.Time
		}
		if meta != "" {
			out = append(out, indented(dimStyle, meta))
		}
		out = append(out,
			indented(bodyStyle, d.Intro),
			indented(dimStyle, "Type next to see the ingredients."),
		)
		return out

	case domain.StateIngredients:
		out := []string{indented(headingStyle, "Ingredients")}
		for _, ing := range d.Ingredients {
			out = append(out, indented(bodyStyle, fmt.Sprintf("• %s  %s", ing.Item, ing.Amount)))
		}
		return append(out, indented(dimStyle, "Type next to start cooking."))

	case domain.StateCooking:
		step, ok := s.CurrentStep()
		if !ok {
			return nil
		}
		return []string{
			indented(headingStyle, fmt.Sprintf("Step %d/%d", s.StepIndex+1, s.StepCount)),
			indented(bodyStyle, step.Instruction),
		}

	case domain.StateFinished:
		return []string{
			indented(voiceStyle, "All steps done. Well cooked!"),
			indented(dimStyle, "Type photo to take a picture, then grade to have it scored."),
		}

	case domain.StateGrading:
		return []string{indented(voiceStyle, "Grading your dish...")}

	case domain.StateGradingResult:
		r := s.Result
		if r == nil {
			return nil
		}
		out := []string{indented(headingStyle, "Score: "+FormatScore(r.Score)+"/100")}
		if r.Feedback != "" {
			out = append(out, indented(bodyStyle, r.Feedback))
		}
		if r.Tips != "" {
			out = append(out, indented(dimStyle, "Tip: "+r.Tips))
		}
		return out

	case domain.StateFailed:
		msg := "Could not load " + s.RecipeName
		if s.Err != nil {
			msg += ": " + s.Err.Error()
		}
		return []string{indented(alertStyle, msg)}

	case domain.StateClosed:
		return []string{indented(voiceStyle, "Goodbye, happy cooking.")}
	}
	return nil
}

// FormatScore prints a score without trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// CatalogLines renders a numbered recipe list.
func CatalogLines(recipes []domain.RecipeSummary) []string {
	if len(recipes) == 0 {
		return []string{indented(dimStyle, "No recipes found.")}
	}
	out := make([]string, 0, len(recipes))
	for i, r := range recipes {
		var meta []string
		for _, m := range []string{r.Category, string(r.Difficulty), r.Time} {
			if m != "" {
				meta = append(meta, m)
			}
		}
		line := indented(headingStyle, fmt.Sprintf("%2d. %s", i+1, r.Name))
		if len(meta) > 0 {
			line += indented(dimStyle, "("+strings.Join(meta, " · ")+")")
		}
		out = append(out, line)
	}
	return out
}
