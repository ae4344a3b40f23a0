package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const cartTokenHeader = "X-Cart-Token"

type ctxKey int

const ctxSessionKey ctxKey = iota

var errMissingCartToken = errors.New("missing cart session token")

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if ww.Status() >= http.StatusInternalServerError {
				a.logger.Error("request", fields...)
				return
			}
			a.logger.Info("request", fields...)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (a *API) cartSessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(cartTokenHeader))
		if token == "" {
			respondError(w, http.StatusUnauthorized, errMissingCartToken)
			return
		}

		sessionID, err := a.tokens.Parse(token)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxSessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxSessionKey).(string)
	return sid
}
