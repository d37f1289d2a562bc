package digipost

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
	"github.com/sirosfoundation/go-digipost/pkg/mime"
	"github.com/sirosfoundation/go-digipost/pkg/transport"
)

// contentTypes maps file types to part content types.
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"html": "text/html",
	"htm":  "text/html",
	"txt":  "text/plain",
	"xml":  "application/xml",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// ContentTypeForFileType returns the content type a document part is sent
// with.
func ContentTypeForFileType(fileType string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(fileType, "."))]; ok {
		return ct
	}
	return mime.ContentTypeOctetStream
}

// NewDocument creates a document with a random UUID.
func NewDocument(subject, fileType string, content []byte) Document {
	return Document{
		UUID:     uuid.NewString(),
		Subject:  subject,
		FileType: fileType,
		Content:  content,
	}
}

// SendMessage delivers msg. Missing message and document ids are generated
// and a zero sender id is replaced by the client's sender.
func (c *Client) SendMessage(ctx context.Context, msg *Message) (*MessageDelivery, error) {
	if msg == nil {
		return nil, apierror.NewConfigurationError("message is required")
	}
	if msg.Recipient.empty() {
		return nil, apierror.NewConfigurationError("message has no recipient")
	}
	if msg.PrimaryDocument.Content == nil {
		return nil, apierror.NewConfigurationError("primary document has no content")
	}

	uri, err := c.link(ctx, entrypoint.RelCreateMessage)
	if err != nil {
		return nil, err
	}

	prepared := *msg
	prepared.Attachments = append([]Document(nil), msg.Attachments...)
	if prepared.MessageID == "" {
		prepared.MessageID = uuid.NewString()
	}
	if prepared.SenderID == 0 {
		prepared.SenderID = c.config.SenderID
	}

	docs := prepared.Documents()
	for _, doc := range docs {
		if doc.UUID == "" {
			doc.UUID = uuid.NewString()
		}
	}

	body, err := marshalXML(&prepared)
	if err != nil {
		return nil, err
	}
	multipart := mime.NewMessage(mime.Part{
		ContentType: transport.MediaTypeV8,
		Filename:    "message",
		Data:        body,
	})
	for _, doc := range docs {
		multipart.Add(mime.Part{
			ContentType: ContentTypeForFileType(doc.FileType),
			Filename:    doc.UUID,
			Data:        doc.Content,
		})
	}

	delivery, err := postMultipart[MessageDelivery](ctx, c.requests, uri, multipart)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	c.logger.Info("message sent",
		zap.String("message_id", prepared.MessageID),
		zap.String("status", delivery.Status),
		zap.String("delivery_method", delivery.DeliveryMethod))
	return delivery, nil
}
