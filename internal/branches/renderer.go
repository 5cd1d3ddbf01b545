package branches

import (
	"fmt"
	"strings"
	"time"

	"github.com/temirov/profile_scripts/internal/markdown"
)

const (
	tableHeaderConstant       = "| 🌿 Branch | 📝 Latest Commit | 👤 Author | ⏰ Time | 🔗 Link |"
	tableSeparatorConstant    = "|-----------|------------------|-----------|---------|---------|"
	tableRowTemplateConstant  = "| `%s` | %s | %s | %s | [`%s`](%s) |"
	footerTemplateConstant    = "*🕐 Last updated: %s*"
	unknownCommitDateConstant = "unknown"
	lineBreakConstant         = "\n"
)

// Renderer renders branch records as the BRANCH_ACTIVITY region body.
type Renderer struct{}

// Render produces a five-column table followed by the generation footer.
// Callers reject empty record sets before rendering. Commit titles arrive
// escaped; branch and author names only need their column separators escaped.
func (Renderer) Render(records []BranchRecord, generatedAt time.Time) string {
	lines := make([]string, 0, len(records)+4)
	lines = append(lines, tableHeaderConstant, tableSeparatorConstant)
	for _, record := range records {
		lines = append(lines, fmt.Sprintf(tableRowTemplateConstant,
			markdown.EscapeTableCell(record.BranchName),
			record.CommitTitle,
			markdown.EscapeTableCell(record.AuthorName),
			formatCommitDate(record.CommitDate),
			record.ShortSHA,
			record.CommitURL,
		))
	}
	lines = append(lines, "", fmt.Sprintf(footerTemplateConstant, markdown.FormatGenerationTime(generatedAt)))
	return strings.Join(lines, lineBreakConstant)
}

func formatCommitDate(commitDate time.Time) string {
	if commitDate.IsZero() {
		return unknownCommitDateConstant
	}
	return markdown.FormatDate(commitDate)
}
