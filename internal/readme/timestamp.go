package readme

import "regexp"

const maskedTimestampConstant = "<generated>"

var generationTimestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC`)

// maskGenerationTimestamps replaces every rendered generation time with a fixed token.
func maskGenerationTimestamps(content string) string {
	return generationTimestampPattern.ReplaceAllString(content, maskedTimestampConstant)
}
