package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// writeError renders validation failures with field messages and
// everything else through the standard error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return
	}
	httputil.WriteError(w, r, err, logger)
}

// writeView writes a 200 envelope carrying data and an optional notice.
func writeView(w http.ResponseWriter, data any, n *notify.Notice) {
	httputil.WriteData(w, http.StatusOK, data, toNotice(n))
}

func toNotice(n *notify.Notice) *httputil.Notice {
	if n == nil {
		return nil
	}
	return &httputil.Notice{Level: string(n.Level), Message: n.Message}
}

func sessionID(r *http.Request) string {
	return middleware.SessionIDFromContext(r.Context())
}
