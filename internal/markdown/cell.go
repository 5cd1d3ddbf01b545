package markdown

import "strings"

const tableCellSeparatorConstant = "|"

var (
	angleBracketReplacer = strings.NewReplacer("<", tablePolicyEntities["<"], ">", tablePolicyEntities[">"])
	tableCellReplacer    = strings.NewReplacer(tableCellSeparatorConstant, backslashConstant+tableCellSeparatorConstant)
)

// EncodeAngleBrackets entity-encodes < and > so remote text cannot open HTML
// tags or comments inside a rendered region.
func EncodeAngleBrackets(text string) string {
	return angleBracketReplacer.Replace(text)
}

// EscapeTableCell escapes the column separator of a Markdown table cell.
func EscapeTableCell(text string) string {
	return tableCellReplacer.Replace(text)
}
