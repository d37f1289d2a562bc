package mime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage(Part{ContentType: "text/plain", Data: []byte("a")})

	assert.True(t, strings.HasPrefix(msg.Boundary, "----=_Part_"))
	assert.Len(t, msg.Parts, 1)

	other := NewMessage()
	assert.NotEqual(t, msg.Boundary, other.Boundary)
}

func TestSerializeAndParse(t *testing.T) {
	messageXML := []byte(`<message xmlns="http://api.digipost.no/schema/v8"><message-id>1</message-id></message>`)
	pdf := []byte("%PDF-1.7\x00\x01binary")

	msg := NewMessage(
		Part{ContentType: "application/vnd.digipost-v8+xml", Filename: "message", Data: messageXML},
		Part{ContentType: "application/pdf", Filename: "3f2504e0-4f89-11d3-9a0c-0305e82c3301", Data: pdf},
	)
	msg.Add(Part{Filename: "attachment", Data: []byte("raw")})

	body, contentType, err := msg.Serialize()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/mixed; boundary="))
	assert.Contains(t, string(body), `Content-Disposition: attachment; filename=message`)

	parsed, err := Parse(bytes.NewReader(body), contentType)
	require.NoError(t, err)
	require.Len(t, parsed.Parts, 3)

	assert.Equal(t, "message", parsed.Parts[0].Filename)
	assert.Equal(t, messageXML, parsed.Parts[0].Data)
	assert.Equal(t, "application/vnd.digipost-v8+xml", parsed.Parts[0].ContentType)

	doc := parsed.Part("3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	require.NotNil(t, doc)
	assert.Equal(t, pdf, doc.Data)
	assert.Equal(t, "application/pdf", doc.ContentType)

	assert.Equal(t, ContentTypeOctetStream, parsed.Parts[2].ContentType)
	assert.Nil(t, parsed.Part("missing"))
}

func TestSerialize_CustomHeaders(t *testing.T) {
	msg := NewMessage(Part{
		ContentType: "text/plain",
		Data:        []byte("x"),
		Headers:     map[string][]string{"X-Custom": {"1"}},
	})

	body, contentType, err := msg.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(bytes.NewReader(body), contentType)
	require.NoError(t, err)
	assert.Equal(t, "1", parsed.Parts[0].Headers.Get("X-Custom"))
	assert.Empty(t, parsed.Parts[0].Filename)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "application/xml")
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""), "multipart/mixed")
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""), ";;;")
	assert.Error(t, err)
}
