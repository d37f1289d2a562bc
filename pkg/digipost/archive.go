package digipost

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
	"github.com/sirosfoundation/go-digipost/pkg/mime"
	"github.com/sirosfoundation/go-digipost/pkg/transport"
)

// ErrNoArchiveDocument is returned when a lookup by id matches nothing.
var ErrNoArchiveDocument = errors.New("archive contains no document")

// One returns the single document of an archive returned by a lookup.
func (a *Archive) One() (*ArchiveDocument, error) {
	if len(a.Documents) == 0 {
		return nil, ErrNoArchiveDocument
	}
	return &a.Documents[0], nil
}

// FetchArchives lists the sender's archives.
func (c *Client) FetchArchives(ctx context.Context) ([]Archive, error) {
	uri, err := c.link(ctx, entrypoint.RelGetArchives)
	if err != nil {
		return nil, err
	}
	archives, err := get[Archives](ctx, c.requests, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archives: %w", err)
	}
	return archives.Archives, nil
}

// ArchiveDocuments stores the documents of archive. Document contents are
// sent as multipart parts named by document UUID; missing UUIDs are
// generated.
func (c *Client) ArchiveDocuments(ctx context.Context, archive *Archive) (*Archive, error) {
	if archive == nil || len(archive.Documents) == 0 {
		return nil, apierror.NewConfigurationError("archive has no documents")
	}

	uri, err := c.link(ctx, entrypoint.RelArchiveDocuments)
	if err != nil {
		return nil, err
	}

	prepared := *archive
	prepared.Links = nil
	prepared.Documents = append([]ArchiveDocument(nil), archive.Documents...)
	if prepared.SenderID == 0 {
		prepared.SenderID = c.config.SenderID
	}
	for i := range prepared.Documents {
		if prepared.Documents[i].UUID == "" {
			prepared.Documents[i].UUID = uuid.NewString()
		}
	}

	body, err := marshalXML(&prepared)
	if err != nil {
		return nil, err
	}
	multipart := mime.NewMessage(mime.Part{
		ContentType: transport.MediaTypeV8,
		Filename:    "archive",
		Data:        body,
	})
	for _, doc := range prepared.Documents {
		contentType := doc.ContentType
		if contentType == "" {
			contentType = ContentTypeForFileType(doc.FileType)
		}
		multipart.Add(mime.Part{
			ContentType: contentType,
			Filename:    doc.UUID,
			Data:        doc.Content,
		})
	}

	c.logger.Debug("archiving documents",
		zap.String("archive", archiveName(prepared.Name)),
		zap.Int("count", len(prepared.Documents)))

	result, err := postMultipart[Archive](ctx, c.requests, uri, multipart)
	if err != nil {
		return nil, fmt.Errorf("failed to archive documents: %w", err)
	}
	return result, nil
}

func archiveName(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

// FetchArchiveDocumentsByReferenceID returns the archives holding
// documents with referenceID.
func (c *Client) FetchArchiveDocumentsByReferenceID(ctx context.Context, referenceID string) ([]Archive, error) {
	base, err := c.link(ctx, entrypoint.RelGetArchiveDocumentsByRefID)
	if err != nil {
		return nil, err
	}
	archives, err := get[Archives](ctx, c.requests, joinPath(base, referenceID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive documents: %w", err)
	}
	return archives.Archives, nil
}

// FetchArchiveByUUID returns the archive view of one document.
func (c *Client) FetchArchiveByUUID(ctx context.Context, id uuid.UUID) (*Archive, error) {
	base, err := c.link(ctx, entrypoint.RelGetArchiveDocumentByUUID)
	if err != nil {
		return nil, err
	}
	archive, err := get[Archive](ctx, c.requests, joinPath(base, id.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive document %s: %w", id, err)
	}
	return archive, nil
}

// FetchArchiveDocumentByUUID returns one archived document.
func (c *Client) FetchArchiveDocumentByUUID(ctx context.Context, id uuid.UUID) (*ArchiveDocument, error) {
	archive, err := c.FetchArchiveByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	return archive.One()
}

// FetchArchiveByExternalID looks up a document archived under an external
// id. The id is converted with NameUUIDFromBytes.
func (c *Client) FetchArchiveByExternalID(ctx context.Context, externalID string) (*Archive, error) {
	return c.FetchArchiveByUUID(ctx, NameUUIDFromBytes([]byte(externalID)))
}

// FetchNextDocuments follows an archive's next page link.
func (c *Client) FetchNextDocuments(ctx context.Context, archive *Archive) (*Archive, error) {
	uri, err := archive.Links.URI(RelNextDocuments)
	if err != nil {
		return nil, err
	}
	next, err := get[Archive](ctx, c.requests, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next documents: %w", err)
	}
	return next, nil
}

// HasMoreDocuments reports whether archive has a next page.
func (a *Archive) HasMoreDocuments() bool {
	_, ok := a.Links.Find(RelNextDocuments)
	return ok
}

// UpdateDocument replaces the metadata of an archived document.
func (c *Client) UpdateDocument(ctx context.Context, doc *ArchiveDocument) (*ArchiveDocument, error) {
	uri, err := doc.Links.URI(RelUpdate)
	if err != nil {
		return nil, err
	}
	payload := archiveDocumentRequest{ArchiveDocument: *doc}
	payload.Links = nil

	updated, err := put[ArchiveDocument](ctx, c.requests, uri, &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to update archive document %s: %w", doc.UUID, err)
	}
	return updated, nil
}

// DeleteDocument removes an archived document.
func (c *Client) DeleteDocument(ctx context.Context, doc *ArchiveDocument) error {
	uri, err := doc.Links.URI(RelDelete)
	if err != nil {
		return err
	}
	if err := c.requests.delete(ctx, uri); err != nil {
		return fmt.Errorf("failed to delete archive document %s: %w", doc.UUID, err)
	}
	return nil
}

// StreamDocument streams the content of an archived document. The caller
// closes the returned reader.
func (c *Client) StreamDocument(ctx context.Context, doc *ArchiveDocument) (io.ReadCloser, error) {
	uri, err := doc.Links.URI(RelGetArchiveDocumentStream)
	if err != nil {
		return nil, err
	}
	return c.requests.getStream(ctx, uri)
}

// StreamDocumentByExternalID streams the document archived under an
// external id.
func (c *Client) StreamDocumentByExternalID(ctx context.Context, externalID string) (io.ReadCloser, error) {
	archive, err := c.FetchArchiveByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	doc, err := archive.One()
	if err != nil {
		return nil, err
	}
	return c.StreamDocument(ctx, doc)
}

// GetDocumentContent returns a short-lived URI for viewing an archived
// document.
func (c *Client) GetDocumentContent(ctx context.Context, doc *ArchiveDocument) (*DocumentContent, error) {
	uri, err := doc.Links.URI(RelGetArchiveDocumentContent)
	if err != nil {
		return nil, err
	}
	content, err := get[DocumentContent](ctx, c.requests, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document content: %w", err)
	}
	return content, nil
}
