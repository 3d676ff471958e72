package handlers

import (
	"log/slog"
	"net/http"
)

func slogError(r *http.Request, err error) {
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", requestID(r),
		"error", err,
	)
}
