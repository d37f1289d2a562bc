package digipost

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirosfoundation/go-digipost/pkg/entrypoint"
)

// MinimumSearchLength is the shortest term sent to the search endpoint.
const MinimumSearchLength = 3

const reservedURICharacters = ":/?#[]@!$&'()*+,;="

// RemoveReservedURICharacters strips the RFC 3986 reserved characters.
func RemoveReservedURICharacters(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedURICharacters, r) {
			return -1
		}
		return r
	}, s)
}

// Search finds recipients matching term. Terms shorter than
// MinimumSearchLength once reserved characters are removed give an empty
// result without contacting the API.
func (c *Client) Search(ctx context.Context, term string) (*SearchResult, error) {
	term = RemoveReservedURICharacters(term)
	if len([]rune(term)) < MinimumSearchLength {
		return &SearchResult{}, nil
	}

	base, err := c.link(ctx, entrypoint.RelSearch)
	if err != nil {
		return nil, err
	}

	result, err := get[SearchResult](ctx, c.requests, joinPath(base, term))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return result, nil
}
