package digipost

import (
	"context"
	"fmt"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

// AddAdditionalData attaches structured data to a delivered document.
// data is the XML of one v8 data type element, such as an appointment.
func (c *Client) AddAdditionalData(ctx context.Context, doc DeliveredDocument, data []byte) error {
	uri, err := doc.Links.URI(RelAddAdditionalData)
	if err != nil {
		return err
	}
	return c.AddAdditionalDataAt(ctx, uri, data)
}

// AddAdditionalDataAt posts data to an additional data link.
func (c *Client) AddAdditionalDataAt(ctx context.Context, uri string, data []byte) error {
	if len(data) == 0 {
		return apierror.NewConfigurationError("additional data is required")
	}

	payload := &additionalData{
		SenderID: c.config.SenderID,
		DataType: innerXML{Inner: data},
	}
	if err := c.requests.postXML(ctx, uri, payload); err != nil {
		return fmt.Errorf("failed to add additional data: %w", err)
	}
	return nil
}
