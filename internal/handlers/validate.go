package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeAndValidate parses the JSON body into dst and runs the
// struct's validate tags. It writes the error response itself and
// reports success through the return value.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()
	if err := decoder.Decode(dst); err != nil {
		logger.Warn("HTTP: malformed JSON body",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	if err := validate.Struct(dst); err != nil {
		fields := map[string]any{}
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fe := range validationErrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		logger.Warn("HTTP: request validation failed",
			zap.Any("fields", fields),
			zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusBadRequest,
			toPayload("error", "VALIDATION_ERROR"),
			toPayload("message", "request validation failed"),
			toPayload("details", fields),
		)
		return false
	}

	return true
}
