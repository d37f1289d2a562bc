package digipost

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
)

// GetDocumentStatus returns the delivery status of a sent document.
func (c *Client) GetDocumentStatus(ctx context.Context, id uuid.UUID) (*DocumentStatus, error) {
	base, err := c.link(ctx, entrypoint.RelGetDocumentStatus)
	if err != nil {
		return nil, err
	}
	status, err := get[DocumentStatus](ctx, c.requests, joinPath(base, id.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document status %s: %w", id, err)
	}
	return status, nil
}

// GetDocumentEvents returns events for the sender's documents between from
// and to.
func (c *Client) GetDocumentEvents(ctx context.Context, from, to time.Time, offset, maxResults int) (*DocumentEvents, error) {
	if to.Before(from) {
		return nil, apierror.NewConfigurationError("document events: to is before from")
	}
	if maxResults <= 0 {
		return nil, apierror.NewConfigurationError("document events: maxResults must be positive")
	}

	base, err := c.link(ctx, entrypoint.RelGetDocumentEvents)
	if err != nil {
		return nil, err
	}
	uri := withQuery(base, url.Values{
		"sender":     {strconv.FormatInt(c.config.SenderID, 10)},
		"from":       {from.UTC().Format(time.RFC3339)},
		"to":         {to.UTC().Format(time.RFC3339)},
		"offset":     {strconv.Itoa(offset)},
		"maxResults": {strconv.Itoa(maxResults)},
	})

	events, err := get[DocumentEvents](ctx, c.requests, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document events: %w", err)
	}
	return events, nil
}

// GetShareDocumentsRequestState returns the documents shared in response
// to a share request.
func (c *Client) GetShareDocumentsRequestState(ctx context.Context, id uuid.UUID) (*ShareDocumentsRequestState, error) {
	base, err := c.link(ctx, entrypoint.RelGetShareDocumentsRequestState)
	if err != nil {
		return nil, err
	}
	state, err := get[ShareDocumentsRequestState](ctx, c.requests, joinPath(base, id.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch share documents request state %s: %w", id, err)
	}
	return state, nil
}

// GetSharedDocumentContent returns a short-lived URI for viewing a shared
// document.
func (c *Client) GetSharedDocumentContent(ctx context.Context, doc SharedDocument) (*DocumentContent, error) {
	uri, err := doc.Links.URI(RelGetSharedDocumentContent)
	if err != nil {
		return nil, err
	}
	content, err := get[DocumentContent](ctx, c.requests, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shared document content: %w", err)
	}
	return content, nil
}

// FetchSharedDocument streams a shared document. The caller closes the
// returned reader.
func (c *Client) FetchSharedDocument(ctx context.Context, doc SharedDocument) (io.ReadCloser, error) {
	uri, err := doc.Links.URI(RelGetSharedDocumentStream)
	if err != nil {
		return nil, err
	}
	return c.requests.getStream(ctx, uri)
}
