package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an error's Kind onto an HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindAccessDenied:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidState, domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the status of its Kind. Internal errors are
// logged and their text withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := statusFor(err)
	detail := err.Error()

	var de *domain.Error
	if errors.As(err, &de) {
		detail = de.Message
	}

	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "Request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		if status == http.StatusInternalServerError {
			detail = "internal server error"
		}
	}

	writeJSON(w, status, errorResponse{Detail: detail})
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.Error{Kind: domain.KindInvalid, Message: "invalid request body"}
	}
	if err := validatorInstance().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &domain.Error{
				Kind:    domain.KindInvalid,
				Message: "field " + fe.Field() + " failed on " + fe.Tag(),
			}
		}
		return domain.ErrInvalidInput
	}
	return nil
}

// queryInt reads an integer query parameter, falling back to def when it is
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
