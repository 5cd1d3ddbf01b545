package tools

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/temirov/profile_scripts/internal/markdown"
)

const (
	cardsPerRowConstant           = 3
	maximumListedFilesConstant    = 3
	maximumListedTopicsConstant   = 3
	suggestionURLTemplateConstant = "https://github.com/%s/%s/issues"
	renderErrorTemplateConstant   = "unable to render tools list: %w"
	codeSpanDelimiterConstant     = "`"
	templateListSeparatorConstant = " "
	unknownUpdateDateConstant     = "unknown"
	toolsTemplateNameConstant     = "tools"
)

const toolsTemplateConstant = `{{- define "card"}}
<td align="center" width="33%">

### 🔧 {{.DisplayName}}

<img src="https://img.icons8.com/fluency/96/000000/code.png" width="80px" />

{{.Description}}
{{- if .Files}}

**📄 Files**: {{codeList .Files}}
{{- end}}
{{- if .Topics}}

{{codeList .Topics}}
{{- end}}

[![Use tool](https://img.shields.io/badge/🚀_Use_tool-4CAF50?style=for-the-badge)]({{.PrimaryURL}})
[![Source](https://img.shields.io/badge/📦_Source-2196F3?style=for-the-badge)]({{.SourceURL}})

⭐ {{.Stars}} | 🍴 {{.Forks}} | 💻 {{.Language}}

📅 Updated: {{.Updated}}

</td>
{{- end}}
{{- if not .Rows -}}
<table>
<tr>
<td align="center">

### 🔧 No tools yet

There are no tools available yet. Stay tuned!

[![Suggest a tool](https://img.shields.io/badge/💡_Suggest_a_tool-9C27B0?style=for-the-badge)]({{.SuggestionURL}})

</td>
</tr>
</table>
{{- else -}}
<table>
{{- range .Rows}}
<tr>
{{- range .Cards}}{{template "card" .}}{{end}}
{{- range .Padding}}
<td width="33%"></td>
{{- end}}
</tr>
{{- end}}
</table>

**📊 Stats**: {{.ToolCount}} tools | ⭐ {{.TotalStars}} Stars | 🍴 {{.TotalForks}} Forks
{{- end}}

*🕐 Last updated: {{.GeneratedAt}}*`

var toolsTemplate = template.Must(template.New(toolsTemplateNameConstant).Funcs(template.FuncMap{
	"codeList": formatCodeList,
}).Parse(toolsTemplateConstant))

type toolsView struct {
	Rows          []toolRowView
	ToolCount     int
	TotalStars    int
	TotalForks    int
	SuggestionURL string
	GeneratedAt   string
}

type toolRowView struct {
	Cards   []toolCardView
	Padding []struct{}
}

type toolCardView struct {
	DisplayName string
	Description string
	Files       []string
	Topics      []string
	PrimaryURL  string
	SourceURL   string
	Stars       int
	Forks       int
	Language    string
	Updated     string
}

// Renderer renders tool records as the TOOLS_LIST region body.
type Renderer struct{}

// Render produces the card grid for records, or the placeholder block when
// there are none. The profile owner is used for the suggestion link.
func (Renderer) Render(username string, records []ToolRecord, generatedAt time.Time) (string, error) {
	view := toolsView{
		ToolCount:     len(records),
		SuggestionURL: fmt.Sprintf(suggestionURLTemplateConstant, username, username),
		GeneratedAt:   markdown.FormatGenerationTime(generatedAt),
	}

	for rowStart := 0; rowStart < len(records); rowStart += cardsPerRowConstant {
		rowEnd := min(rowStart+cardsPerRowConstant, len(records))
		row := toolRowView{Padding: make([]struct{}, cardsPerRowConstant-(rowEnd-rowStart))}
		for _, record := range records[rowStart:rowEnd] {
			row.Cards = append(row.Cards, newToolCardView(record))
		}
		view.Rows = append(view.Rows, row)
	}

	for _, record := range records {
		view.TotalStars += record.StarCount
		view.TotalForks += record.ForkCount
	}

	var builder strings.Builder
	if executeError := toolsTemplate.Execute(&builder, view); executeError != nil {
		return "", fmt.Errorf(renderErrorTemplateConstant, executeError)
	}
	return builder.String(), nil
}

func newToolCardView(record ToolRecord) toolCardView {
	updated := unknownUpdateDateConstant
	if !record.LastUpdated.IsZero() {
		updated = markdown.FormatDate(record.LastUpdated)
	}
	return toolCardView{
		DisplayName: record.DisplayName,
		Description: markdown.EncodeAngleBrackets(record.Description),
		Files:       firstItems(record.DiscoveredFiles, maximumListedFilesConstant),
		Topics:      firstItems(record.TopicTags, maximumListedTopicsConstant),
		PrimaryURL:  record.PrimaryURL,
		SourceURL:   record.SourceURL,
		Stars:       record.StarCount,
		Forks:       record.ForkCount,
		Language:    record.PrimaryLanguage,
		Updated:     updated,
	}
}

func firstItems(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}

func formatCodeList(items []string) string {
	formatted := make([]string, 0, len(items))
	for _, item := range items {
		formatted = append(formatted, codeSpanDelimiterConstant+item+codeSpanDelimiterConstant)
	}
	return strings.Join(formatted, templateListSeparatorConstant)
}
