// Package entrypoint parses and caches the Digipost API entrypoint.
//
// The entrypoint is a hypermedia document listing the operations available
// to a sender. Each <link> carries a relation URI such as
// https://api.digipost.no/relations/create_message; links are looked up by
// the upper-cased relation name (CREATE_MESSAGE).
//
// Fetched entrypoints are kept in a Cache owned by the client. Entries
// expire after a sliding window without use, and always after an absolute
// lifetime, independently per key.
package entrypoint

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Relations used by the client
const (
	RelCreateMessage                 = "CREATE_MESSAGE"
	RelSearch                        = "SEARCH"
	RelAutocomplete                  = "AUTOCOMPLETE"
	RelIdentifyRecipient             = "IDENTIFY_RECIPIENT"
	RelGetInbox                      = "GET_INBOX"
	RelGetArchives                   = "GET_ARCHIVES"
	RelArchiveDocuments              = "ARCHIVE_DOCUMENTS"
	RelGetArchiveDocumentByUUID      = "GET_ARCHIVE_DOCUMENT_BY_UUID"
	RelGetArchiveDocumentsByRefID    = "GET_ARCHIVE_DOCUMENTS_BY_REFERENCEID"
	RelGetSenderInformation          = "GET_SENDER_INFORMATION"
	RelGetSenderInformationByOrgNo   = "GET_SENDER_INFORMATION_BY_ORGNO"
	RelGetDocumentStatus             = "GET_DOCUMENT_STATUS"
	RelGetDocumentEvents             = "GET_DOCUMENT_EVENTS"
	RelGetShareDocumentsRequestState = "GET_SHARE_DOCUMENTS_REQUEST_STATE"
)

// ErrLinkNotFound is returned when the entrypoint lacks a relation.
var ErrLinkNotFound = errors.New("link not found in entrypoint")

// Link is a hypermedia link.
type Link struct {
	Rel       string
	URI       string
	MediaType string
}

// Root is a parsed API entrypoint.
type Root struct {
	Certificate string
	links       map[string]Link
	raw         []byte
}

// Parse parses an entrypoint document.
func Parse(data []byte) (*Root, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse entrypoint: %w", err)
	}

	el := doc.Root()
	if el == nil || el.Tag != "entrypoint" {
		return nil, fmt.Errorf("failed to parse entrypoint: unexpected root element")
	}

	root := &Root{
		links: make(map[string]Link),
		raw:   append([]byte(nil), data...),
	}
	if cert := el.SelectElement("certificate"); cert != nil {
		root.Certificate = strings.TrimSpace(cert.Text())
	}

	for _, linkEl := range el.SelectElements("link") {
		link := Link{
			Rel:       linkEl.SelectAttrValue("rel", ""),
			URI:       linkEl.SelectAttrValue("uri", ""),
			MediaType: linkEl.SelectAttrValue("media-type", ""),
		}
		if link.Rel == "" || link.URI == "" {
			continue
		}
		root.links[RelationName(link.Rel)] = link
	}

	return root, nil
}

// RelationName returns the lookup key for a relation URI, e.g.
// "https://api.digipost.no/relations/get_inbox" becomes "GET_INBOX".
func RelationName(rel string) string {
	name := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		name = rel[i+1:]
	}
	return strings.ToUpper(name)
}

// Link returns the link for a relation name.
func (r *Root) Link(name string) (Link, error) {
	link, ok := r.links[strings.ToUpper(name)]
	if !ok {
		return Link{}, fmt.Errorf("%w: %s", ErrLinkNotFound, name)
	}
	return link, nil
}

// URI returns the parsed target of a relation.
func (r *Root) URI(name string) (*url.URL, error) {
	link, err := r.Link(name)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(link.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid %s link: %w", name, err)
	}
	return u, nil
}

// Has reports whether the entrypoint offers a relation.
func (r *Root) Has(name string) bool {
	_, ok := r.links[strings.ToUpper(name)]
	return ok
}

// Names returns the available relation names in sorted order.
func (r *Root) Names() []string {
	names := make([]string, 0, len(r.links))
	for name := range r.links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Raw returns the document the root was parsed from.
func (r *Root) Raw() []byte {
	return r.raw
}
