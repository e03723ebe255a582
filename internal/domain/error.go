package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode is the closed set of codes carried by a failed envelope.
type ErrorCode string

const (
	CodeSportNotSupported  ErrorCode = "SPORT_NOT_SUPPORTED"
	CodeUnknownTool        ErrorCode = "UNKNOWN_TOOL"
	CodeMissingParam       ErrorCode = "MISSING_PARAM"
	CodeEnrichmentDegraded ErrorCode = "PLAYER_ENRICHMENT_UNAVAILABLE"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Upstream error suffixes. The full code is "<PLATFORM>_<suffix>", e.g. SLEEPER_RATE_LIMIT.
const (
	SuffixNotFound   = "NOT_FOUND"
	SuffixRateLimit  = "RATE_LIMIT"
	SuffixBadRequest = "BAD_REQUEST"
	SuffixAPIError   = "API_ERROR"
	SuffixTimeout    = "TIMEOUT"
)

// UpstreamCode builds a platform-prefixed upstream error code.
func UpstreamCode(platform, suffix string) ErrorCode {
	return ErrorCode(strings.ToUpper(platform) + "_" + suffix)
}

// HasSuffix reports whether the code belongs to the given upstream family.
func (c ErrorCode) HasSuffix(suffix string) bool {
	return strings.HasSuffix(string(c), "_"+suffix)
}

var (
	ErrMissingParam      = errors.New("missing required parameter")
	ErrSportNotSupported = errors.New("sport not supported")
	ErrUnknownTool       = errors.New("unknown tool")
)

type Error struct {
	Code      ErrorCode
	Op        string
	Message   string
	Cause     error
	Retryable bool
	Status    int
}

// Error renders the "<CODE>: <message>" form that ExtractError understands.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// MissingParam reports a required tool parameter that was not supplied.
func MissingParam(op, name string) *Error {
	return E(CodeMissingParam, op, fmt.Sprintf("%s is required", name), ErrMissingParam)
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:      existing.Code,
			Op:        op,
			Message:   existing.Message,
			Cause:     existing.Cause,
			Retryable: existing.Retryable,
			Status:    existing.Status,
		}
	}
	return E(code, op, "", err)
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrMissingParam):
		return CodeMissingParam, true
	case errors.Is(err, ErrSportNotSupported):
		return CodeSportNotSupported, true
	case errors.Is(err, ErrUnknownTool):
		return CodeUnknownTool, true
	default:
		return "", false
	}
}

var codePrefix = regexp.MustCompile(`^([A-Z][A-Z0-9_]*[A-Z0-9]): (.*)$`)

// ExtractError resolves the envelope code and message for any error. Typed
// errors win; otherwise a "<CODE>: <message>" prefix is honoured; anything
// else is INTERNAL_ERROR with the raw message.
func ExtractError(err error) (ErrorCode, string) {
	if err == nil {
		return "", ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		msg := domainErr.Message
		if msg == "" && domainErr.Cause != nil {
			msg = domainErr.Cause.Error()
		}
		if msg == "" {
			msg = string(domainErr.Code)
		}
		return domainErr.Code, msg
	}
	if code, ok := CodeFrom(err); ok {
		return code, err.Error()
	}
	if m := codePrefix.FindStringSubmatch(err.Error()); m != nil {
		return ErrorCode(m[1]), m[2]
	}
	return CodeInternal, err.Error()
}
