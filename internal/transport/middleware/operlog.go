package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/frahmantamala/admin-management/internal/core/datamodel/operlog"
	"github.com/frahmantamala/admin-management/internal/core/events"
	"github.com/frahmantamala/admin-management/internal/session"
	"github.com/frahmantamala/admin-management/internal/transport"
)

const maxAuditParamBytes = 2000

// Audit publishes an operation event after the handler completes. Persistence
// happens on the bus, off the request path; losing an audit row never fails
// the request it describes.
func Audit(bus *events.EventBus, title string, businessType int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var params []byte
			if r.Body != nil {
				params, _ = io.ReadAll(io.LimitReader(r.Body, maxAuditParamBytes))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(params), r.Body))
			}

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			operName := ""
			if loginUser, ok := session.FromContext(r.Context()); ok {
				operName = loginUser.User.UserName
			}

			status := operlog.StatusSuccess
			errorMsg := ""
			if sw.status() >= 400 {
				status = operlog.StatusFailure
				errorMsg = http.StatusText(sw.status())
			}

			bus.Publish(r.Context(), events.NewOperationEvent(events.OperationPayload{
				Title:         title,
				BusinessType:  businessType,
				RequestMethod: r.Method,
				OperName:      operName,
				OperURL:       r.URL.Path,
				OperIP:        transport.ClientIP(r),
				OperParam:     filterSensitiveBody(params),
				Status:        status,
				ErrorMsg:      errorMsg,
				OperTime:      start,
				CostTime:      time.Since(start).Milliseconds(),
			}))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}
