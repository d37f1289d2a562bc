package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteError_BareStatus(t *testing.T) {
	err := &RemoteError{StatusCode: 500}
	assert.Equal(t, "500: Internal Server Error", err.Error())
	assert.False(t, err.Structured())
}

func TestRemoteError_Structured(t *testing.T) {
	err := &RemoteError{StatusCode: 404, Code: "NOT_FOUND", Type: "ClientError", Message: "no such document"}
	assert.True(t, err.Structured())
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "no such document")
}

func TestRemoteError_MessageOnly(t *testing.T) {
	doc := &RemoteError{StatusCode: 400, Message: "bad request", Document: true}
	assert.True(t, doc.Structured())
	assert.Equal(t, "400: Bad Request: bad request", doc.Error())

	raw := &RemoteError{StatusCode: 502, Message: "<html>Bad Gateway</html>"}
	assert.False(t, raw.Structured())
}

func TestIsRemote_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("fetching inbox: %w", &RemoteError{StatusCode: 403})

	re, ok := IsRemote(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 403, re.StatusCode)

	_, ok = IsRemote(errors.New("other"))
	assert.False(t, ok)
}

func TestConfigurationError_Unwrap(t *testing.T) {
	cause := errors.New("no key")
	err := &ConfigurationError{Message: "loading certificate", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConfiguration(fmt.Errorf("ctx: %w", err)))
	assert.Equal(t, "configuration error: loading certificate: no key", err.Error())
}

func TestParseError(t *testing.T) {
	err := &ParseError{Raw: []byte("<broken"), Err: errors.New("unexpected EOF")}
	assert.True(t, IsParse(err))
	assert.Contains(t, err.Error(), "unexpected EOF")
}
