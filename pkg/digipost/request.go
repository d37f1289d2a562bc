package digipost

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirosfoundation/go-digipost/pkg/mime"
	"github.com/sirosfoundation/go-digipost/pkg/response"
	"github.com/sirosfoundation/go-digipost/pkg/transport"
)

// requestHelper sends requests through the signing client and decodes
// their responses.
type requestHelper struct {
	client *transport.HTTPSClient
	base   *url.URL
}

// resolve turns a link target into an absolute URL. Relative targets are
// resolved against the environment.
func (h *requestHelper) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return h.base.ResolveReference(u).String(), nil
}

// send builds and sends a request. A nil body sends no body at all; a
// non-nil empty body is sent, and signed, as an empty payload.
func (h *requestHelper) send(ctx context.Context, method, uri string, body []byte, contentType string) (*http.Response, error) {
	target, err := h.resolve(uri)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return h.client.Do(req)
}

func (h *requestHelper) getBytes(ctx context.Context, uri string) ([]byte, error) {
	stream, err := h.getStream(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	body, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (h *requestHelper) getStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	resp, err := h.send(ctx, http.MethodGet, uri, nil, "")
	if err != nil {
		return nil, err
	}
	return response.Stream(resp)
}

func (h *requestHelper) delete(ctx context.Context, uri string) error {
	resp, err := h.send(ctx, http.MethodDelete, uri, nil, "")
	if err != nil {
		return err
	}
	return response.Check(resp)
}

// postXML sends payload and only checks the status.
func (h *requestHelper) postXML(ctx context.Context, uri string, payload any) error {
	body, err := marshalXML(payload)
	if err != nil {
		return err
	}
	resp, err := h.send(ctx, http.MethodPost, uri, body, transport.MediaTypeV8)
	if err != nil {
		return err
	}
	return response.Check(resp)
}

func get[T any](ctx context.Context, h *requestHelper, uri string) (*T, error) {
	resp, err := h.send(ctx, http.MethodGet, uri, nil, "")
	if err != nil {
		return nil, err
	}
	return response.Handle[T](resp)
}

func post[T any](ctx context.Context, h *requestHelper, uri string, payload any) (*T, error) {
	return sendXML[T](ctx, h, http.MethodPost, uri, payload)
}

func put[T any](ctx context.Context, h *requestHelper, uri string, payload any) (*T, error) {
	return sendXML[T](ctx, h, http.MethodPut, uri, payload)
}

func sendXML[T any](ctx context.Context, h *requestHelper, method, uri string, payload any) (*T, error) {
	body, err := marshalXML(payload)
	if err != nil {
		return nil, err
	}
	resp, err := h.send(ctx, method, uri, body, transport.MediaTypeV8)
	if err != nil {
		return nil, err
	}
	return response.Handle[T](resp)
}

func postMultipart[T any](ctx context.Context, h *requestHelper, uri string, msg *mime.Message) (*T, error) {
	body, contentType, err := msg.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	resp, err := h.send(ctx, http.MethodPost, uri, body, contentType)
	if err != nil {
		return nil, err
	}
	return response.Handle[T](resp)
}

func marshalXML(v any) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return append([]byte(xml.Header), body...), nil
}

// joinPath appends escaped path segments to a link target.
func joinPath(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// withQuery appends query parameters to a link target.
func withQuery(base string, query url.Values) string {
	if len(query) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + query.Encode()
}
