package server

import (
	"encoding/json"
	"errors"
	"net/http"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/mission"
)

// ErrorResponse aliases the canonical shared type.
type ErrorResponse = types.ErrorResponse

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: message})
}

// writeErrorHint writes an error response carrying a resolution hint.
func writeErrorHint(w http.ResponseWriter, status int, kind, message, hint string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: message, Hint: hint})
}

// writeDomainError converts store and session errors into the wire envelope.
func writeDomainError(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *mission.NotFoundError:
		writeError(w, e.StatusCode(), types.KindNotFound, e.Error())
	case *mission.SpecError:
		writeError(w, e.StatusCode(), types.KindInvalidMissionSpec, e.Error())
	case *mission.UnsupportedComparatorError:
		writeErrorHint(w, e.StatusCode(), types.KindUnsupportedComparator, e.Error(), e.Hint())
	case *mission.TypeMismatchError:
		writeError(w, e.StatusCode(), types.KindTypeMismatch, e.Error())
	default:
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, types.KindInvalidCredentials, "Invalid credentials")
		case errors.Is(err, auth.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, types.KindTokenExpired, "Token expired")
		case errors.Is(err, auth.ErrTokenUnknown):
			writeError(w, http.StatusUnauthorized, types.KindTokenUnknown, "Invalid or expired token")
		default:
			writeError(w, http.StatusInternalServerError, "internal", err.Error())
		}
	}
}
