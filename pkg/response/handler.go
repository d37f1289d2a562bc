// Package response classifies Digipost API responses.
//
// A response is either a success carrying the expected payload, a failure
// carrying an error document, or a bare failure status. Handle converts each
// case into a typed value or an apierror; nothing is retried.
package response

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// Handle reads resp and decodes a success body into a new T. The body is
// always closed. An empty success body yields a zero T, not a ParseError.
func Handle[T any](resp *http.Response) (*T, error) {
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if !Success(resp.StatusCode) {
		return nil, RemoteError(resp.StatusCode, body)
	}

	result := new(T)
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}
	if err := xml.Unmarshal(body, result); err != nil {
		return nil, &apierror.ParseError{Raw: body, Err: err}
	}

	return result, nil
}

// Check classifies resp for calls that expect no payload.
func Check(resp *http.Response) error {
	body, err := readBody(resp)
	if err != nil {
		return err
	}
	if !Success(resp.StatusCode) {
		return RemoteError(resp.StatusCode, body)
	}
	return nil
}

// Stream returns the body of a success response unread. On failure the
// body is consumed and closed.
func Stream(resp *http.Response) (io.ReadCloser, error) {
	if Success(resp.StatusCode) {
		if resp.Body == nil {
			return http.NoBody, nil
		}
		return resp.Body, nil
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	return nil, RemoteError(resp.StatusCode, body)
}

// Success reports whether status is 2xx.
func Success(status int) bool {
	return status >= 200 && status < 300
}

// RemoteError builds the error for a failure response. An empty body yields
// a bare status error and an error document yields its code, type and
// message. Any other body, such as a proxy's HTML page, is kept as the
// message of an unstructured error.
func RemoteError(status int, body []byte) *apierror.RemoteError {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &apierror.RemoteError{StatusCode: status}
	}

	if re, ok := parseErrorDocument(status, trimmed); ok {
		return re
	}

	return &apierror.RemoteError{StatusCode: status, Message: string(trimmed)}
}

// parseErrorDocument extracts error-code, error-type and error-message from
// an <error> document regardless of namespace prefix.
func parseErrorDocument(status int, body []byte) (*apierror.RemoteError, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, false
	}

	root := doc.Root()
	if root == nil || root.Tag != "error" {
		return nil, false
	}

	re := &apierror.RemoteError{
		StatusCode: status,
		Code:       childText(root, "error-code"),
		Type:       childText(root, "error-type"),
		Message:    childText(root, "error-message"),
		Document:   true,
	}
	if re.Code == "" && re.Type == "" && re.Message == "" {
		return nil, false
	}
	return re, true
}

func childText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is required")
	}
	if resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
