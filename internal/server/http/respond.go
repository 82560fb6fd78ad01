package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/convert"
	"github.com/and161185/flashcards/internal/errs"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readID parses a positive integer route parameter. Anything else reads as not found.
func readID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeJSON reads a bounded JSON body into dst, writing the failure response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, convert.Failure("Request body too large", nil))
			return false
		}
		writeJSON(w, http.StatusBadRequest, convert.Failure("Invalid request body", nil))
		return false
	}
	return true
}

// writeActionError maps a mutation error to its JSON failure. verb and noun build the
// generic message, e.g. "Failed to update card".
func (s *Server) writeActionError(w http.ResponseWriter, err error, verb, noun string) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, convert.Failure("Validation failed", ve.Details))
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, convert.Failure(notFoundMessage(noun), nil))
	case errors.Is(err, errs.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, convert.Failure("unauthenticated", nil))
	default:
		s.log.Error("action failed", zap.String("action", verb+" "+noun), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, convert.Failure("Failed to "+verb+" "+noun, nil))
	}
}

func notFoundMessage(noun string) string {
	return strings.ToUpper(noun[:1]) + noun[1:] + " not found or access denied"
}

// formErrorText flattens an action error into the ?error= banner text.
func formErrorText(err error) string {
	var ve *errs.ValidationError
	if errors.As(err, &ve) && len(ve.Details) > 0 {
		msgs := make([]string, 0, len(ve.Details))
		for _, d := range ve.Details {
			msgs = append(msgs, d.Message)
		}
		return strings.Join(msgs, ". ")
	}
	return "Something went wrong, please try again"
}
