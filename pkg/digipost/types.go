package digipost

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
)

// Namespace is the XML namespace of the v8 API.
const Namespace = "http://api.digipost.no/schema/v8"

// Relations found on resources rather than on the entrypoint
const (
	RelAddAdditionalData         = "ADD_ADDITIONAL_DATA"
	RelGetDocumentContent        = "GET_DOCUMENT_CONTENT"
	RelDelete                    = "DELETE"
	RelNextDocuments             = "NEXT_DOCUMENTS"
	RelUpdate                    = "UPDATE"
	RelGetArchiveDocumentContent = "GET_ARCHIVE_DOCUMENT_CONTENT"
	RelGetArchiveDocumentStream  = "GET_ARCHIVE_DOCUMENT_CONTENT_STREAM"
	RelGetSharedDocumentContent  = "GET_SHARED_DOCUMENT_CONTENT"
	RelGetSharedDocumentStream   = "GET_SHARED_DOCUMENT_CONTENT_STREAM"
)

// Link is a hypermedia link on a resource.
type Link struct {
	Rel       string `xml:"rel,attr"`
	URI       string `xml:"uri,attr"`
	MediaType string `xml:"media-type,attr,omitempty"`
}

// Links is the link list of a resource.
type Links []Link

// Find returns the link for a relation name such as "DELETE".
func (l Links) Find(name string) (Link, bool) {
	want := entrypoint.RelationName(name)
	for _, link := range l {
		if entrypoint.RelationName(link.Rel) == want {
			return link, true
		}
	}
	return Link{}, false
}

// URI returns the target of a relation or an error wrapping
// entrypoint.ErrLinkNotFound.
func (l Links) URI(name string) (string, error) {
	link, ok := l.Find(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", entrypoint.ErrLinkNotFound, name)
	}
	return link.URI, nil
}

// SenderStatusValid marks a sender the broker may act for.
const SenderStatusValid = "VALID_SENDER"

// SenderInformation describes a sender.
type SenderInformation struct {
	XMLName  xml.Name `xml:"sender-information" json:"-"`
	SenderID int64    `xml:"sender-id"`
	Status   string   `xml:"sender-status"`
	Features []string `xml:"supported-features>feature"`
	Links    Links    `xml:"link"`
}

// Valid reports whether the broker may send on behalf of the sender.
func (s *SenderInformation) Valid() bool {
	return s.Status == SenderStatusValid
}

// Address is a postal address.
type Address struct {
	Street      string `xml:"street,omitempty"`
	HouseNumber string `xml:"house-number,omitempty"`
	HouseLetter string `xml:"house-letter,omitempty"`
	ZipCode     string `xml:"zip-code,omitempty"`
	City        string `xml:"city,omitempty"`
}

// NameAndAddress identifies a person by name and postal address.
type NameAndAddress struct {
	FullName     string `xml:"fullname"`
	AddressLine1 string `xml:"addressline1,omitempty"`
	AddressLine2 string `xml:"addressline2,omitempty"`
	PostalCode   string `xml:"postalcode,omitempty"`
	City         string `xml:"city,omitempty"`
	BirthDate    string `xml:"birth-date,omitempty"`
	PhoneNumber  string `xml:"phone-number,omitempty"`
	Email        string `xml:"email-address,omitempty"`
}

// SearchResult lists recipients matching a search term.
type SearchResult struct {
	XMLName    xml.Name          `xml:"recipients" json:"-"`
	Recipients []SearchRecipient `xml:"recipient"`
}

// SearchRecipient is one search hit.
type SearchRecipient struct {
	FirstName        string    `xml:"firstname"`
	MiddleName       string    `xml:"middlename"`
	LastName         string    `xml:"lastname"`
	OrganisationName string    `xml:"organisation-name"`
	DigipostAddress  string    `xml:"digipost-address"`
	MobileNumber     string    `xml:"mobile-number"`
	Addresses        []Address `xml:"address"`
}

// Recipient identifies the receiver of a message. Exactly one field is
// expected to be set.
type Recipient struct {
	PersonalIdentificationNumber string          `xml:"personal-identification-number,omitempty"`
	OrganisationNumber           string          `xml:"organisation-number,omitempty"`
	DigipostAddress              string          `xml:"digipost-address,omitempty"`
	NameAndAddress               *NameAndAddress `xml:"name-and-address,omitempty"`
}

func (r Recipient) empty() bool {
	return r.PersonalIdentificationNumber == "" && r.OrganisationNumber == "" &&
		r.DigipostAddress == "" && r.NameAndAddress == nil
}

// Document is a document in an outgoing message.
type Document struct {
	UUID                string `xml:"uuid"`
	Subject             string `xml:"subject,omitempty"`
	FileType            string `xml:"file-type"`
	AuthenticationLevel string `xml:"authentication-level,omitempty"`
	SensitivityLevel    string `xml:"sensitivity-level,omitempty"`

	// Content is sent as its own multipart part
	Content []byte `xml:"-" json:"-"`
}

// Message is an outgoing message.
type Message struct {
	XMLName         xml.Name   `xml:"http://api.digipost.no/schema/v8 message" json:"-"`
	MessageID       string     `xml:"message-id,omitempty"`
	SenderID        int64      `xml:"sender-id,omitempty"`
	Recipient       Recipient  `xml:"recipient"`
	PrimaryDocument Document   `xml:"primary-document"`
	Attachments     []Document `xml:"attachment"`
}

// Documents returns the primary document followed by the attachments.
func (m *Message) Documents() []*Document {
	docs := []*Document{&m.PrimaryDocument}
	for i := range m.Attachments {
		docs = append(docs, &m.Attachments[i])
	}
	return docs
}

// MessageDelivery is the receipt for a sent message.
type MessageDelivery struct {
	XMLName         xml.Name            `xml:"message-delivery" json:"-"`
	MessageID       string              `xml:"message-id"`
	DeliveryMethod  string              `xml:"delivery-method"`
	Status          string              `xml:"status"`
	DeliveryTime    *time.Time          `xml:"delivery-time"`
	PrimaryDocument DeliveredDocument   `xml:"primary-document"`
	Attachments     []DeliveredDocument `xml:"attachment"`
}

// DeliveredDocument is a document as reported in a delivery receipt.
type DeliveredDocument struct {
	UUID     string `xml:"uuid"`
	Subject  string `xml:"subject"`
	FileType string `xml:"file-type"`
	Links    Links  `xml:"link"`
}

// Identification is a recipient lookup. Exactly one field is expected to
// be set.
type Identification struct {
	XMLName                      xml.Name        `xml:"http://api.digipost.no/schema/v8 identification" json:"-"`
	PersonalIdentificationNumber string          `xml:"personal-identification-number,omitempty"`
	OrganisationNumber           string          `xml:"organisation-number,omitempty"`
	DigipostAddress              string          `xml:"digipost-address,omitempty"`
	NameAndAddress               *NameAndAddress `xml:"name-and-address,omitempty"`
}

// Inbox lists documents received by the sender.
type Inbox struct {
	XMLName   xml.Name        `xml:"inbox" json:"-"`
	Documents []InboxDocument `xml:"document"`
}

// InboxDocument is a received document.
type InboxDocument struct {
	ID                  int64           `xml:"id"`
	Subject             string          `xml:"subject"`
	Sender              string          `xml:"sender"`
	DeliveryTime        *time.Time      `xml:"delivery-time"`
	FirstAccessed       *time.Time      `xml:"first-accessed"`
	ContentType         string          `xml:"content-type"`
	ReferenceFromSender string          `xml:"reference-from-sender"`
	Attachments         []InboxDocument `xml:"attachment"`
	Links               Links           `xml:"link"`
}

// Archives lists the sender's archives.
type Archives struct {
	XMLName  xml.Name  `xml:"archives" json:"-"`
	Archives []Archive `xml:"archive"`
}

// Archive is a named collection of archived documents.
type Archive struct {
	XMLName   xml.Name          `xml:"http://api.digipost.no/schema/v8 archive" json:"-"`
	SenderID  int64             `xml:"sender-id,omitempty"`
	Name      string            `xml:"name,omitempty"`
	Documents []ArchiveDocument `xml:"documents"`
	Links     Links             `xml:"link"`
}

// ArchiveDocument is a document stored in an archive.
type ArchiveDocument struct {
	UUID        string             `xml:"uuid"`
	FileName    string             `xml:"file-name"`
	FileType    string             `xml:"file-type"`
	ReferenceID string             `xml:"referenceid,omitempty"`
	ContentType string             `xml:"content-type"`
	Archived    *time.Time         `xml:"archived-time,omitempty"`
	Attributes  []ArchiveAttribute `xml:"attributes"`
	Links       Links              `xml:"link"`

	// Content is sent as its own multipart part
	Content []byte `xml:"-" json:"-"`
}

// Attribute returns the value of the named attribute.
func (d *ArchiveDocument) Attribute(key string) (string, bool) {
	for _, attr := range d.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// ArchiveAttribute is a searchable key/value pair on an archived document.
type ArchiveAttribute struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

// archiveDocumentRequest names the root element of a document update.
type archiveDocumentRequest struct {
	XMLName xml.Name `xml:"http://api.digipost.no/schema/v8 archive-document" json:"-"`
	ArchiveDocument
}

// DocumentContent points at a short-lived URI for reading a document.
type DocumentContent struct {
	ContentType string `xml:"content-type"`
	URI         string `xml:"uri"`
}

// DocumentStatus is the delivery state of a sent document.
type DocumentStatus struct {
	XMLName        xml.Name   `xml:"document-status" json:"-"`
	UUID           string     `xml:"uuid"`
	DeliveryStatus string     `xml:"delivery-status"`
	DeliveryMethod string     `xml:"delivery-method"`
	Created        *time.Time `xml:"created"`
	Delivered      *time.Time `xml:"delivered"`
	Read           *time.Time `xml:"read"`
	FileType       string     `xml:"file-type"`
}

// DocumentEvents is a page of document events.
type DocumentEvents struct {
	XMLName xml.Name        `xml:"document-events" json:"-"`
	Events  []DocumentEvent `xml:"event"`
}

// DocumentEvent is something that happened to a sent document.
type DocumentEvent struct {
	DocumentUUID string     `xml:"document-uuid"`
	Type         string     `xml:"type"`
	Created      *time.Time `xml:"created"`
}

// ShareDocumentsRequestState describes documents a recipient shared with
// the sender.
type ShareDocumentsRequestState struct {
	XMLName   xml.Name         `xml:"share-documents-request-state" json:"-"`
	SharedAt  *time.Time       `xml:"shared-at-time"`
	Expiry    *time.Time       `xml:"expiry-time"`
	Withdrawn *time.Time       `xml:"withdrawn-time"`
	Documents []SharedDocument `xml:"shared-document-data"`
}

// SharedDocument is one shared document.
type SharedDocument struct {
	FileName          string     `xml:"file-name"`
	FileType          string     `xml:"file-type"`
	FileSizeBytes     int64      `xml:"file-size-bytes"`
	OriginDeliveredAt *time.Time `xml:"origin-delivered-at"`
	Links             Links      `xml:"link"`
}

// additionalData wraps caller-supplied data type XML.
type additionalData struct {
	XMLName  xml.Name `xml:"http://api.digipost.no/schema/v8 additional-data" json:"-"`
	SenderID int64    `xml:"sender-id,omitempty"`
	DataType innerXML `xml:"data-type"`
}

type innerXML struct {
	Inner []byte `xml:",innerxml"`
}
