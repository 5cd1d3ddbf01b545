// Package markdown provides the text normalization shared by the profile
// renderers: escaping of Markdown-significant characters, rune-budget
// truncation with an ellipsis, and commit title extraction.
package markdown
