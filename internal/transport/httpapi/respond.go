package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"dresscutur/backend/internal/service/auth"
	"dresscutur/backend/internal/service/booking"
	"dresscutur/backend/internal/service/catalog"
	"dresscutur/backend/internal/service/contacts"
	"dresscutur/backend/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// badRequest is a client error raised while reading the request itself.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string {
	return e.msg
}

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a single JSON object into dst and validates its tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequestf("request body too large")
		case errors.Is(err, io.EOF):
			return badRequestf("request body is required")
		default:
			return badRequestf("invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return badRequestf("request body must contain a single JSON object")
	}
	return validate.Struct(dst)
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "email":
			parts = append(parts, fe.Field()+" must be a valid email")
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "max", "min":
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

func isValidation(err error) bool {
	var (
		bErr  *badRequest
		bkErr *booking.ValidationError
		cErr  *catalog.ValidationError
		ctErr *contacts.ValidationError
		aErr  *auth.ValidationError
	)
	return errors.As(err, &bErr) ||
		errors.As(err, &bkErr) ||
		errors.As(err, &cErr) ||
		errors.As(err, &ctErr) ||
		errors.As(err, &aErr)
}

// writeError maps service and store errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(vErrs)})
	case isValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, store.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "That time is no longer available. Pick a different slot."})
	case errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflicts with an existing record"})
	case errors.Is(err, booking.ErrCalendarUnavailable):
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Could not load the calendar. Try again."})
	default:
		log.Error("request failed",
			slog.Any("err", err),
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
