package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix           = "<"
	choicePlaceholderSuffix           = ">"
	choiceSeparatorLiteral            = "|"
	choiceUsageEmptyTemplate          = "`%s`"
	choiceUsageFullTemplate           = "`%s` %s"
	choiceValueTypeConstant           = "string"
	unsupportedChoiceTemplateConstant = "unsupported value %q (expected one of %s)"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ChoiceValue is a pflag.Value accepting one of a closed set of case-insensitive options.
type ChoiceValue struct {
	current string
	choices []string
}

// NewChoiceValue constructs a ChoiceValue initialised with defaultChoice.
func NewChoiceValue(defaultChoice string, choices []string) *ChoiceValue {
	return &ChoiceValue{
		current: strings.ToLower(strings.TrimSpace(defaultChoice)),
		choices: uniqueChoices(choices),
	}
}

// String returns the selected option.
func (value *ChoiceValue) String() string {
	if value == nil {
		return ""
	}
	return value.current
}

// Set validates and stores candidate.
func (value *ChoiceValue) Set(candidate string) error {
	normalized := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range value.choices {
		if strings.ToLower(choice) == normalized {
			value.current = normalized
			return nil
		}
	}
	return fmt.Errorf(unsupportedChoiceTemplateConstant, candidate, strings.Join(value.choices, ", "))
}

// Type names the flag type in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeConstant
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, uniqueChoices(choices))
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	for _, choice := range choices {
		if len(normalizedDefault) > 0 && strings.ToLower(choice) == normalizedDefault {
			highlighted = append(highlighted, strings.ToUpper(choice))
			continue
		}
		highlighted = append(highlighted, choice)
	}
	return highlighted
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		unique = append(unique, trimmedChoice)
	}
	return unique
}
