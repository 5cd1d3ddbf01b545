package markdown

import "strings"

// EllipsisConstant marks truncated text.
const EllipsisConstant = "..."

// Budgets used by the branch dashboard.
const (
	CommitTitleBudgetConstant = 60
	AuthorNameBudgetConstant  = 20
)

const lineBreakConstant = "\n"

// Truncate shortens text to at most budget runes. Longer text keeps its first
// budget-3 runes followed by an ellipsis, so the result is exactly budget runes.
func Truncate(text string, budget int) string {
	body, truncated := split(text, budget)
	if truncated {
		return body + EllipsisConstant
	}
	return body
}

// FirstLine returns the subject line of a commit message.
func FirstLine(message string) string {
	firstLine, _, _ := strings.Cut(message, lineBreakConstant)
	return strings.TrimRight(firstLine, "\r")
}

func split(text string, budget int) (string, bool) {
	runes := []rune(text)
	if budget <= 0 || len(runes) <= budget {
		return text, false
	}
	keptRunes := budget - len([]rune(EllipsisConstant))
	if keptRunes < 0 {
		keptRunes = 0
	}
	return string(runes[:keptRunes]), true
}
