package markdown

import (
	"fmt"
	"strings"
)

// EscapePolicy selects the set of characters escaped in rendered text.
type EscapePolicy string

// Supported escape policies.
const (
	// EscapePolicyFull escapes every character Markdown treats as syntax.
	EscapePolicyFull EscapePolicy = EscapePolicy("full")
	// EscapePolicyTable escapes only what breaks a table cell or a link, and
	// entity-encodes angle brackets.
	EscapePolicyTable EscapePolicy = EscapePolicy("table")
)

const (
	unsupportedEscapePolicyTemplateConstant = "unsupported escape policy %q (expected %s or %s)"
	backslashConstant                       = `\`
)

var (
	fullPolicyCharacters  = []string{`\`, "`", "*", "_", "{", "}", "[", "]", "(", ")", "#", "+", "-", ".", "!", "|"}
	tablePolicyCharacters = []string{"|", "[", "]", "(", ")"}
	tablePolicyEntities   = map[string]string{"<": "&lt;", ">": "&gt;"}
)

// UnsupportedEscapePolicyError reports an unknown policy name.
type UnsupportedEscapePolicyError struct {
	Value string
}

// Error describes the unsupported policy.
func (policyError UnsupportedEscapePolicyError) Error() string {
	return fmt.Sprintf(unsupportedEscapePolicyTemplateConstant, policyError.Value, EscapePolicyFull, EscapePolicyTable)
}

// ParseEscapePolicy resolves a configured policy name. An empty value selects EscapePolicyFull.
func ParseEscapePolicy(value string) (EscapePolicy, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	switch EscapePolicy(normalizedValue) {
	case "", EscapePolicyFull:
		return EscapePolicyFull, nil
	case EscapePolicyTable:
		return EscapePolicyTable, nil
	default:
		return "", UnsupportedEscapePolicyError{Value: value}
	}
}

// Escaper escapes text according to a single policy.
type Escaper struct {
	policy   EscapePolicy
	replacer *strings.Replacer
}

// NewEscaper builds an Escaper for policy. Unknown policies fall back to EscapePolicyFull.
func NewEscaper(policy EscapePolicy) Escaper {
	replacements := []string{}
	switch policy {
	case EscapePolicyTable:
		for _, character := range tablePolicyCharacters {
			replacements = append(replacements, character, backslashConstant+character)
		}
		for character, entity := range tablePolicyEntities {
			replacements = append(replacements, character, entity)
		}
	default:
		policy = EscapePolicyFull
		for _, character := range fullPolicyCharacters {
			replacements = append(replacements, character, backslashConstant+character)
		}
	}
	return Escaper{policy: policy, replacer: strings.NewReplacer(replacements...)}
}

// Policy returns the policy applied by the escaper.
func (escaper Escaper) Policy() EscapePolicy {
	return escaper.policy
}

// Escape applies the policy to text.
func (escaper Escaper) Escape(text string) string {
	if escaper.replacer == nil {
		return NewEscaper(escaper.policy).Escape(text)
	}
	return escaper.replacer.Replace(text)
}

// EscapeTruncated truncates text to budget runes and escapes the kept part.
// The ellipsis added by truncation is never escaped.
func (escaper Escaper) EscapeTruncated(text string, budget int) string {
	body, truncated := split(text, budget)
	escapedBody := escaper.Escape(body)
	if truncated {
		return escapedBody + EllipsisConstant
	}
	return escapedBody
}
