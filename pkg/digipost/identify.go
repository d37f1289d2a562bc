package digipost

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
)

// IdentificationResultCode is the overall outcome of an identification.
type IdentificationResultCode string

// Identification outcomes
const (
	ResultDigipost     IdentificationResultCode = "DIGIPOST"
	ResultIdentified   IdentificationResultCode = "IDENTIFIED"
	ResultUnidentified IdentificationResultCode = "UNIDENTIFIED"
	ResultInvalid      IdentificationResultCode = "INVALID"
)

// IdentificationResultType says which field of the result carries data.
type IdentificationResultType int

const (
	ResultTypeNone IdentificationResultType = iota
	ResultTypeDigipostAddress
	ResultTypePersonalias
	ResultTypeInvalidReason
	ResultTypeUnidentifiedReason
)

func (t IdentificationResultType) String() string {
	switch t {
	case ResultTypeDigipostAddress:
		return "DigipostAddress"
	case ResultTypePersonalias:
		return "Personalias"
	case ResultTypeInvalidReason:
		return "InvalidReason"
	case ResultTypeUnidentifiedReason:
		return "UnidentifiedReason"
	default:
		return "None"
	}
}

// IdentificationError explains why a recipient was not identified.
type IdentificationError string

// Identification error codes
const (
	IdentificationErrorUnidentified                        IdentificationError = "UNIDENTIFIED"
	IdentificationErrorInvalid                             IdentificationError = "INVALID"
	IdentificationErrorInvalidPersonalIdentificationNumber IdentificationError = "INVALID_PERSONAL_IDENTIFICATION_NUMBER"
	IdentificationErrorInvalidOrganisationNumber           IdentificationError = "INVALID_ORGANISATION_NUMBER"
	IdentificationErrorUnknown                             IdentificationError = "UNKNOWN"
	IdentificationErrorMultipleMatches                     IdentificationError = "MULTIPLE_MATCHES"
)

// parseIdentificationError maps a reason code. NOT_FOUND is reported as
// unknown.
func parseIdentificationError(code string) (IdentificationError, error) {
	switch IdentificationError(code) {
	case IdentificationErrorUnidentified,
		IdentificationErrorInvalid,
		IdentificationErrorInvalidPersonalIdentificationNumber,
		IdentificationErrorInvalidOrganisationNumber,
		IdentificationErrorUnknown,
		IdentificationErrorMultipleMatches:
		return IdentificationError(code), nil
	}
	if code == "NOT_FOUND" {
		return IdentificationErrorUnknown, nil
	}
	return "", fmt.Errorf("unknown identification error %q", code)
}

// IdentificationResult is the outcome of Identify.
type IdentificationResult struct {
	Code IdentificationResultCode
	Type IdentificationResultType

	// Data is the Digipost address or person alias when Type says so
	Data string

	// Error is set for invalid and unidentified results
	Error IdentificationError
}

// Identified reports whether the recipient can receive messages.
func (r *IdentificationResult) Identified() bool {
	return r.Code == ResultDigipost || r.Code == ResultIdentified
}

type identificationResultXML struct {
	XMLName            xml.Name `xml:"identification-result"`
	Result             string   `xml:"result"`
	DigipostAddress    string   `xml:"digipost-address"`
	Personalias        string   `xml:"person-alias"`
	InvalidReason      string   `xml:"invalid-reason"`
	UnidentifiedReason string   `xml:"unidentified-reason"`
}

func (x *identificationResultXML) result() (*IdentificationResult, error) {
	result := &IdentificationResult{Code: IdentificationResultCode(x.Result)}

	var reason string
	switch {
	case x.DigipostAddress != "":
		result.Type, result.Data = ResultTypeDigipostAddress, x.DigipostAddress
	case x.Personalias != "":
		result.Type, result.Data = ResultTypePersonalias, x.Personalias
	case x.InvalidReason != "":
		result.Type, reason = ResultTypeInvalidReason, x.InvalidReason
	case x.UnidentifiedReason != "":
		result.Type, reason = ResultTypeUnidentifiedReason, x.UnidentifiedReason
	}

	if reason != "" {
		code, err := parseIdentificationError(reason)
		if err != nil {
			return nil, err
		}
		result.Error = code
	}
	return result, nil
}

// Identify checks whether a recipient can be reached through Digipost.
func (c *Client) Identify(ctx context.Context, id Identification) (*IdentificationResult, error) {
	uri, err := c.link(ctx, entrypoint.RelIdentifyRecipient)
	if err != nil {
		return nil, err
	}

	raw, err := post[identificationResultXML](ctx, c.requests, uri, &id)
	if err != nil {
		return nil, fmt.Errorf("identification failed: %w", err)
	}

	result, err := raw.result()
	if err != nil {
		return nil, &apierror.ParseError{Err: err}
	}
	return result, nil
}
