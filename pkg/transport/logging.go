package transport

import (
	"net/http"
	"net/http/httputil"
	"time"

	"go.uber.org/zap"
)

// Logging returns middleware that logs each exchange at debug level. With
// dumpBodies set, request and response bodies are logged in full.
func Logging(logger *zap.Logger, dumpBodies bool) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			log := logger.With(
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
			)

			if dumpBodies && log.Core().Enabled(zap.DebugLevel) {
				if dump, err := httputil.DumpRequestOut(req, true); err == nil {
					log.Debug("request", zap.ByteString("dump", dump))
				}
			}

			start := time.Now()
			resp, err := next(req)
			elapsed := time.Since(start)

			if err != nil {
				log.Debug("request failed", zap.Duration("duration", elapsed), zap.Error(err))
				return nil, err
			}

			log.Debug("response",
				zap.Int("status", resp.StatusCode),
				zap.Duration("duration", elapsed),
			)
			if dumpBodies && log.Core().Enabled(zap.DebugLevel) {
				if dump, err := httputil.DumpResponse(resp, true); err == nil {
					log.Debug("response body", zap.ByteString("dump", dump))
				}
			}

			return resp, nil
		}
	}
}
