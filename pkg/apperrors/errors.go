package apperrors

import (
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindBadRequest        Kind = "bad_request"
	KindNotFound          Kind = "not_found"
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindAlreadyAnalyzed   Kind = "already_analyzed"
	KindDuplicateMatch    Kind = "duplicate_match"
	KindNoTextAvailable   Kind = "no_text_available"
	KindUnsupportedType   Kind = "unsupported_type"
	KindFileTooLarge      Kind = "file_too_large"
	KindEmptyDocument     Kind = "empty_document"
	KindEmptyAIResponse   Kind = "empty_ai_response"
	KindMalformedResponse Kind = "malformed_response"
	KindInvalidStructure  Kind = "invalid_structure"
	KindAnalysisFailed    Kind = "analysis_failed"
	KindMatchFailed       Kind = "match_failed"
	KindUserNotFound      Kind = "user_not_found"
	KindInternal          Kind = "internal"
)

// Error is the domain error carried across service boundaries. Record holds
// the existing row for AlreadyAnalyzed/DuplicateMatch so callers can reuse it
// instead of retrying.
type Error struct {
	Kind      Kind
	Message   string
	Err       error
	Record    interface{}
	Limit     int
	Remaining int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so errors.Is works against the exported sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// StatusCode maps the domain kind onto an HTTP status for the API edge.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindQuotaExceeded:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest, KindAlreadyAnalyzed, KindDuplicateMatch,
		KindNoTextAvailable, KindUnsupportedType, KindFileTooLarge,
		KindEmptyDocument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrBadRequest        = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrQuotaExceeded     = &Error{Kind: KindQuotaExceeded, Message: "quota exceeded"}
	ErrAlreadyAnalyzed   = &Error{Kind: KindAlreadyAnalyzed, Message: "resume already analyzed"}
	ErrDuplicateMatch    = &Error{Kind: KindDuplicateMatch, Message: "match already exists"}
	ErrNoTextAvailable   = &Error{Kind: KindNoTextAvailable, Message: "no parsed text available"}
	ErrUnsupportedType   = &Error{Kind: KindUnsupportedType, Message: "unsupported file type"}
	ErrFileTooLarge      = &Error{Kind: KindFileTooLarge, Message: "file too large"}
	ErrEmptyDocument     = &Error{Kind: KindEmptyDocument, Message: "document is empty or has too little text"}
	ErrEmptyAIResponse   = &Error{Kind: KindEmptyAIResponse, Message: "empty AI response"}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse, Message: "malformed AI response"}
	ErrInvalidStructure  = &Error{Kind: KindInvalidStructure, Message: "AI response failed structure validation"}
	ErrAnalysisFailed    = &Error{Kind: KindAnalysisFailed, Message: "analysis failed"}
	ErrMatchFailed       = &Error{Kind: KindMatchFailed, Message: "match failed"}
	ErrUserNotFound      = &Error{Kind: KindUserNotFound, Message: "user not found"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// QuotaExceeded carries the configured limit so the API can surface it for
// the upsell prompt.
func QuotaExceeded(feature string, limit, remaining int) *Error {
	return &Error{
		Kind:      KindQuotaExceeded,
		Message:   fmt.Sprintf("%s limit reached", feature),
		Limit:     limit,
		Remaining: remaining,
	}
}

func AlreadyAnalyzed(existing interface{}) *Error {
	return &Error{
		Kind:    KindAlreadyAnalyzed,
		Message: "resume already analyzed, delete the existing analysis first",
		Record:  existing,
	}
}

func DuplicateMatch(existing interface{}) *Error {
	return &Error{
		Kind:    KindDuplicateMatch,
		Message: "a match already exists for this resume and job",
		Record:  existing,
	}
}
