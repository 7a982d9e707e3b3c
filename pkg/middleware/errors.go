package middleware

import (
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
)

// writeJSONError writes an error in the standard response envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: message},
	})
}
