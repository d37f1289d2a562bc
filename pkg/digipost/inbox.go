package digipost

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
)

// DefaultInboxLimit is the page size used when none is given.
const DefaultInboxLimit = 100

// FetchInbox returns a page of the sender's inbox. A limit of zero or less
// means DefaultInboxLimit.
func (c *Client) FetchInbox(ctx context.Context, offset, limit int) (*Inbox, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultInboxLimit
	}

	base, err := c.link(ctx, entrypoint.RelGetInbox)
	if err != nil {
		return nil, err
	}
	uri := withQuery(base, url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	})

	inbox, err := get[Inbox](ctx, c.requests, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inbox: %w", err)
	}
	return inbox, nil
}

// FetchInboxDocument streams the content of an inbox document. The caller
// closes the returned reader.
func (c *Client) FetchInboxDocument(ctx context.Context, doc InboxDocument) (io.ReadCloser, error) {
	uri, err := doc.Links.URI(RelGetDocumentContent)
	if err != nil {
		return nil, err
	}
	return c.requests.getStream(ctx, uri)
}

// DeleteInboxDocument removes a document from the inbox.
func (c *Client) DeleteInboxDocument(ctx context.Context, doc InboxDocument) error {
	uri, err := doc.Links.URI(RelDelete)
	if err != nil {
		return err
	}
	if err := c.requests.delete(ctx, uri); err != nil {
		return fmt.Errorf("failed to delete inbox document %d: %w", doc.ID, err)
	}
	return nil
}
