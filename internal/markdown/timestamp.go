package markdown

import "time"

const (
	generationTimeLayoutConstant = "2006-01-02 15:04:05"
	generationTimeSuffixConstant = " UTC"
	// DateLayoutConstant formats calendar dates in rendered tables and cards.
	DateLayoutConstant = "2006-01-02"
)

// FormatGenerationTime renders the instant a region was generated, in UTC.
func FormatGenerationTime(instant time.Time) string {
	return instant.UTC().Format(generationTimeLayoutConstant) + generationTimeSuffixConstant
}

// FormatDate renders the UTC calendar date of instant.
func FormatDate(instant time.Time) string {
	return instant.UTC().Format(DateLayoutConstant)
}
