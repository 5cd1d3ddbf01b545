package githubcli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/temirov/profile_scripts/internal/execshell"
)

const (
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
)

const rateLimitPhraseConstant = "rate limit"

var httpStatusPattern = regexp.MustCompile(`\(HTTP (\d{3})\)`)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// HTTPStatus extracts the HTTP status gh reported for a failed API request.
func HTTPStatus(err error) (int, bool) {
	var commandFailure execshell.CommandFailedError
	if !errors.As(err, &commandFailure) {
		return 0, false
	}
	matches := httpStatusPattern.FindStringSubmatch(commandFailure.Result.StandardError)
	if len(matches) != 2 {
		return 0, false
	}
	statusCode, conversionError := strconv.Atoi(matches[1])
	if conversionError != nil {
		return 0, false
	}
	return statusCode, true
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	statusCode, known := HTTPStatus(err)
	return known && statusCode == http.StatusNotFound
}

// IsRateLimited reports whether err is a 403 or 429 response caused by an
// exhausted API rate limit rather than by missing access to the resource.
func IsRateLimited(err error) bool {
	statusCode, known := HTTPStatus(err)
	if !known || (statusCode != http.StatusForbidden && statusCode != http.StatusTooManyRequests) {
		return false
	}
	var commandFailure execshell.CommandFailedError
	if !errors.As(err, &commandFailure) {
		return false
	}
	return strings.Contains(strings.ToLower(commandFailure.Result.StandardError), rateLimitPhraseConstant)
}

// IsConnectionFailure reports whether err means no further request can succeed:
// gh could not be executed, credentials were rejected, or the context ended.
func IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var executionFailure execshell.CommandExecutionError
	if errors.As(err, &executionFailure) {
		return true
	}
	statusCode, known := HTTPStatus(err)
	return known && (statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden)
}
