package transport

import (
	"bytes"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/signature"
)

// Header names used by the Digipost signature protocol
const (
	HeaderUserID        = "X-Digipost-UserId"
	HeaderContentSHA256 = "X-Content-SHA256"
	HeaderSignature     = "X-Digipost-Signature"
)

// MediaTypeV8 is the media type of the API version spoken by this client.
const MediaTypeV8 = "application/vnd.digipost-v8+xml"

const (
	ClientName    = "digipost-api-client-go"
	ClientVersion = "1.0.0"
)

// DefaultUserAgent returns the User-Agent sent when none is configured.
func DefaultUserAgent() string {
	return ClientName + "/" + ClientVersion + " (go/" + strings.TrimPrefix(runtime.Version(), "go") + ")"
}

// AuthConfig configures the authenticating middleware.
type AuthConfig struct {
	// BrokerID is sent in X-Digipost-UserId and covered by the signature
	BrokerID int64

	// Signer computes X-Digipost-Signature
	Signer signature.Signer

	// Accept defaults to MediaTypeV8
	Accept string

	// UserAgent defaults to DefaultUserAgent()
	UserAgent string

	// Now returns the current time; defaults to time.Now
	Now func() time.Time

	Logger *zap.Logger

	// LogSignatureData logs each canonical string at debug level
	LogSignatureData bool
}

// Authenticate returns middleware that signs every outbound request.
//
// A request body is considered present when req.Body is set to anything
// other than http.NoBody, or when GetBody is set. The latter covers
// zero-length bodies built by http.NewRequest from an empty buffer, which
// are hashed like any other body.
func Authenticate(cfg AuthConfig) Middleware {
	accept := cfg.Accept
	if accept == "" {
		accept = MediaTypeV8
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			if cfg.Signer == nil {
				closeBody(req)
				return nil, apierror.NewConfigurationError("no signer configured")
			}

			out := req.Clone(req.Context())
			date := signature.FormatDate(now())

			out.Header.Set(HeaderUserID, formatBrokerID(cfg.BrokerID))
			out.Header.Set("Date", date)
			out.Header.Set("Accept", accept)
			out.Header.Set("User-Agent", userAgent)

			var contentHash *string
			if hasBody(req) {
				body, err := bufferBody(out)
				if err != nil {
					return nil, err
				}
				hash := signature.ContentHash(body)
				contentHash = &hash
				out.Header.Set(HeaderContentSHA256, hash)
			} else {
				out.Header.Del(HeaderContentSHA256)
			}

			canonical := signature.CanonicalString(
				signature.NewContext(out.Method, out.URL, date, cfg.BrokerID, contentHash),
			)
			if cfg.LogSignatureData {
				logger.Debug("=== SIGNATURE DATA START===\n" + canonical + "=== SIGNATURE DATA END ===")
			}

			sig, err := cfg.Signer.Sign(canonical)
			if err != nil {
				closeBody(out)
				return nil, err
			}
			out.Header.Set(HeaderSignature, sig)

			return next(out)
		}
	}
}

func hasBody(req *http.Request) bool {
	if req.Body == nil {
		return false
	}
	return req.Body != http.NoBody || req.GetBody != nil
}

// bufferBody reads the request body into memory and replaces it with a
// replayable copy.
func bufferBody(req *http.Request) ([]byte, error) {
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, &apierror.ConfigurationError{Message: "failed to read request body", Err: err}
	}

	req.ContentLength = int64(len(data))
	if len(data) == 0 {
		req.Body = http.NoBody
	} else {
		req.Body = io.NopCloser(bytes.NewReader(data))
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	return data, nil
}

func formatBrokerID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
