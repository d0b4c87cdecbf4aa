/*
Package resp provides helper functions for constructing and sending standardized HTTP JSON responses.

Every response shares one envelope: a business code, its error kind, a message and optional data.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"typerace/internal/pkg/errs"
	"typerace/internal/pkg/logx"
)

// JSONResponse defines the standardized JSON response structure returned by the application to clients.
type JSONResponse struct {
	// Code is the business status code (0 for success, others for specific errors, see errs package).
	Code int `json:"code"`

	// Kind is the error category; empty on success.
	Kind errs.Kind `json:"kind,omitempty"`

	Message string `json:"message"`

	Data any `json:"data,omitempty"`
}

// RespondJSON sets the Content-Type and writes payload with httpStatus.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
			"path", r.URL.Path,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	if _, err := w.Write(response); err != nil {
		logx.Warn("Failed to write response body", "path", r.URL.Path, "error", err)
	}
}

// RespondSuccess sends a successful HTTP response (HTTP 200 OK).
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondCreated sends data with HTTP 201.
func RespondCreated(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusCreated, JSONResponse{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// RespondError sends the coded error. Errors outside the catalogue are logged and
// reported as fallback so their text never reaches the client.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	RespondErrorWithFallback(w, r, err, errs.ErrUnknown)
}

// RespondErrorWithFallback is RespondError with a caller-chosen fallback code.
func RespondErrorWithFallback(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	customErr := errs.From(err, fallback)
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}
	if customErr.Kind == errs.KindInternal && err != nil {
		logx.Error(err, "Request failed", "path", r.URL.Path, "code", customErr.Code)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Kind:    customErr.Kind,
		Message: customErr.Message,
	})
}
