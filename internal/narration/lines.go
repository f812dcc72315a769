package narration

import (
	"fmt"
	"strconv"
)

// Language selects the narration phrasing.
type Language string

const (
	English            Language = "en"
	TraditionalChinese Language = "zh-TW"
)

// ParseLanguage maps a config value to a Language, defaulting to English.
func ParseLanguage(s string) Language {
	switch s {
	case "zh-TW", "zh_TW", "zh", "tw":
		return TraditionalChinese
	default:
		return English
	}
}

// Lines produces every spoken cue of a session in one language.
type Lines struct {
	Lang Language
}

// ── Intro ────────────────────────────────────────────────────────

func (l Lines) Intro(name, intro string) string {
	if l.Lang == TraditionalChinese {
		return fmt.Sprintf("歡迎來到%s的教學。%s。準備好了嗎？讓我們開始查看食材。", name, intro)
	}
	return fmt.Sprintf("Welcome to %s. %s. Ready? Let's check the ingredients.", name, intro)
}

// ── Ingredients ──────────────────────────────────────────────────

func (l Lines) IngredientsReady() string {
	if l.Lang == TraditionalChinese {
		return "請準備以下食材。確認齊全後，點擊開始烹飪。"
	}
	return "Gather the following ingredients. When everything is ready, start cooking."
}

// ── Cooking ──────────────────────────────────────────────────────

// Step narrates the instruction at the 0-based index.
func (l Lines) Step(index int, instruction string) string {
	if l.Lang == TraditionalChinese {
		return fmt.Sprintf("步驟 %d。%s", index+1, instruction)
	}
	return fmt.Sprintf("Step %d. %s", index+1, instruction)
}

// ── Finish & grading ─────────────────────────────────────────────

func (l Lines) Finished() string {
	if l.Lang == TraditionalChinese {
		return "恭喜完成！請拍一張照片，讓我為這道菜評分。"
	}
	return "Well done! Take a photo of your dish and I'll grade it."
}

func (l Lines) GradeResult(score float64, feedback string) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if l.Lang == TraditionalChinese {
		return fmt.Sprintf("評分完成。得分%s分。%s", s, feedback)
	}
	return fmt.Sprintf("Grading complete. Score %s. %s", s, feedback)
}
