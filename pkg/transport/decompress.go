package transport

import (
	"fmt"
	"net/http"

	"github.com/sirosfoundation/go-digipost/pkg/compression"
)

// Decompress returns middleware that requests gzip/deflate responses and
// decodes them before they reach the caller.
func Decompress() Middleware {
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Accept-Encoding") == "" {
				req = req.Clone(req.Context())
				req.Header.Set("Accept-Encoding", compression.AcceptEncoding)
			}

			resp, err := next(req)
			if err != nil {
				return nil, err
			}

			encoding := resp.Header.Get("Content-Encoding")
			if !compression.Supported(encoding) || resp.Body == nil || resp.Body == http.NoBody {
				return resp, nil
			}

			body, err := compression.NewReader(encoding, resp.Body)
			if err != nil {
				resp.Body.Close()
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}

			resp.Body = body
			resp.Header.Del("Content-Encoding")
			resp.Header.Del("Content-Length")
			resp.ContentLength = -1
			resp.Uncompressed = true

			return resp, nil
		}
	}
}
