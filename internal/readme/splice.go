package readme

import (
	"fmt"
	"strings"
)

const (
	missingMarkerErrorTemplateConstant   = "README marker %s not found"
	duplicateMarkerErrorTemplateConstant = "README marker %s appears %d times"
	markerOrderErrorTemplateConstant     = "README marker %s appears after %s"
	bodyMarkerErrorTemplateConstant      = "generated content contains README marker %s"
	regionLineBreakConstant              = "\n"
)

// MissingMarkerError reports a marker absent from the document.
type MissingMarkerError struct {
	Marker string
}

// Error describes the missing marker.
func (markerError MissingMarkerError) Error() string {
	return fmt.Sprintf(missingMarkerErrorTemplateConstant, markerError.Marker)
}

// DuplicateMarkerError reports a marker that occurs more than once.
type DuplicateMarkerError struct {
	Marker      string
	Occurrences int
}

// Error describes the duplicated marker.
func (markerError DuplicateMarkerError) Error() string {
	return fmt.Sprintf(duplicateMarkerErrorTemplateConstant, markerError.Marker, markerError.Occurrences)
}

// MarkerOrderError reports an end marker preceding its start marker.
type MarkerOrderError struct {
	StartMarker string
	EndMarker   string
}

// Error describes the misordered markers.
func (markerError MarkerOrderError) Error() string {
	return fmt.Sprintf(markerOrderErrorTemplateConstant, markerError.StartMarker, markerError.EndMarker)
}

// BodyMarkerError reports generated content that embeds a marker of its own
// region. Writing it would leave the README with duplicated markers.
type BodyMarkerError struct {
	Marker string
}

// Error describes the embedded marker.
func (markerError BodyMarkerError) Error() string {
	return fmt.Sprintf(bodyMarkerErrorTemplateConstant, markerError.Marker)
}

// Splice replaces the region of content, markers included, with the start
// marker, a line break, body, a line break and the end marker.
func Splice(content string, region Region, body string) (string, error) {
	for _, marker := range []string{region.StartMarker, region.EndMarker} {
		if strings.Contains(body, marker) {
			return "", BodyMarkerError{Marker: marker}
		}
	}

	startIndex, endIndex, locateError := locate(content, region)
	if locateError != nil {
		return "", locateError
	}

	var builder strings.Builder
	builder.Grow(len(content) + len(body))
	builder.WriteString(content[:startIndex])
	builder.WriteString(region.StartMarker)
	builder.WriteString(regionLineBreakConstant)
	builder.WriteString(body)
	builder.WriteString(regionLineBreakConstant)
	builder.WriteString(region.EndMarker)
	builder.WriteString(content[endIndex+len(region.EndMarker):])
	return builder.String(), nil
}

// Extract returns the text between the markers of region.
func Extract(content string, region Region) (string, error) {
	startIndex, endIndex, locateError := locate(content, region)
	if locateError != nil {
		return "", locateError
	}
	return content[startIndex+len(region.StartMarker) : endIndex], nil
}

func locate(content string, region Region) (int, int, error) {
	for _, marker := range []string{region.StartMarker, region.EndMarker} {
		occurrences := strings.Count(content, marker)
		switch {
		case occurrences == 0:
			return 0, 0, MissingMarkerError{Marker: marker}
		case occurrences > 1:
			return 0, 0, DuplicateMarkerError{Marker: marker, Occurrences: occurrences}
		}
	}

	startIndex := strings.Index(content, region.StartMarker)
	endIndex := strings.Index(content, region.EndMarker)
	if endIndex < startIndex+len(region.StartMarker) {
		return 0, 0, MarkerOrderError{StartMarker: region.StartMarker, EndMarker: region.EndMarker}
	}
	return startIndex, endIndex, nil
}
