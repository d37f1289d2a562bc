package mime

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
)

const (
	// ContentTypeMultipartMixed is the MIME type for multipart/mixed
	ContentTypeMultipartMixed = "multipart/mixed"
	// ContentTypeOctetStream is used for parts without a content type
	ContentTypeOctetStream = "application/octet-stream"
)

// Message represents a multipart/mixed message
type Message struct {
	Boundary string
	Parts    []Part
}

// Part represents one attachment of a multipart message
type Part struct {
	ContentType string
	Filename    string
	Data        []byte
	Headers     textproto.MIMEHeader
}

// NewMessage creates a new multipart message with the given parts
func NewMessage(parts ...Part) *Message {
	return &Message{
		Boundary: generateBoundary(),
		Parts:    parts,
	}
}

// Add appends a part
func (m *Message) Add(part Part) {
	m.Parts = append(m.Parts, part)
}

// Serialize creates the complete multipart body and its Content-Type
func (m *Message) Serialize() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.SetBoundary(m.Boundary); err != nil {
		return nil, "", fmt.Errorf("failed to set boundary: %w", err)
	}

	for i, part := range m.Parts {
		header := textproto.MIMEHeader{}

		contentType := part.ContentType
		if contentType == "" {
			contentType = ContentTypeOctetStream
		}
		header.Set("Content-Type", contentType)

		if part.Filename != "" {
			header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
				"filename": part.Filename,
			}))
		}

		for key, values := range part.Headers {
			for _, value := range values {
				header.Add(key, value)
			}
		}

		w, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %d: %w", i, err)
		}
		if _, err := w.Write(part.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %d: %w", i, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	contentType := mime.FormatMediaType(ContentTypeMultipartMixed, map[string]string{
		"boundary": m.Boundary,
	})

	return buf.Bytes(), contentType, nil
}

// Parse parses a multipart message
func Parse(r io.Reader, contentType string) (*Message, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content type: %w", err)
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("not a multipart message: %s", mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("boundary not found in content type")
	}

	msg := &Message{Boundary: boundary}
	reader := multipart.NewReader(r, boundary)

	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		data, err := io.ReadAll(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read part data: %w", err)
		}

		msg.Parts = append(msg.Parts, Part{
			ContentType: p.Header.Get("Content-Type"),
			Filename:    p.FileName(),
			Data:        data,
			Headers:     p.Header,
		})
	}

	return msg, nil
}

// Part returns the part with the given filename, or nil
func (m *Message) Part(filename string) *Part {
	for i := range m.Parts {
		if m.Parts[i].Filename == filename {
			return &m.Parts[i]
		}
	}
	return nil
}

// generateBoundary generates a MIME boundary string
func generateBoundary() string {
	return fmt.Sprintf("----=_Part_%s", strings.ReplaceAll(uuid.New().String(), "-", ""))
}
