package handler

import (
	"errors"
	"net/http"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Generic HTTP error messages for client responses.
// Internal error details never leave the process; domain error messages do.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgInvalidMatchID        = "Invalid match ID"
	ErrMsgInvalidProposalID     = "Invalid proposal ID"
	ErrMsgInvalidLimit          = "Invalid limit parameter"
	ErrMsgInvalidStatus         = "Invalid status parameter"
	ErrMsgInvalidTimestamp      = "Invalid timestamp parameter, expected RFC 3339"
	ErrMsgGenericServerError    = "Something went wrong"
)

// Success messages
const (
	MsgProtocolPaused  = "Protocol paused"
	MsgProtocolResumed = "Protocol resumed"
)

// mapServiceError converts a service error into an HTTP status and a user-facing message.
// Validation errors are 400, lifecycle conflicts 409, oracle refusals 503, everything else 500.
func mapServiceError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrMatchNotFound), errors.Is(err, domain.ErrProposalNotFound):
		return http.StatusNotFound, domainMessage(err)
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, domain.ErrMsgUnauthorized
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, domainMessage(err)
	case errors.Is(err, domain.ErrState):
		return http.StatusConflict, domainMessage(err)
	case errors.Is(err, domain.ErrOracle):
		return http.StatusServiceUnavailable, domainMessage(err)
	default:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
}

// domainMessage returns the message of the innermost domain error in err's chain
func domainMessage(err error) string {
	for _, target := range []error{domain.ErrValidation, domain.ErrState, domain.ErrOracle} {
		for e := err; e != nil; e = errors.Unwrap(e) {
			if next := errors.Unwrap(e); next == target {
				return e.Error()
			}
		}
	}
	return err.Error()
}
