package signature

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Context holds the request elements covered by a signature.
type Context struct {
	Method      string
	Path        string
	Query       string
	Date        string
	BrokerID    string
	ContentHash *string
}

// NewContext derives a signing context from a request URL.
//
// For absolute URLs the escaped path and raw query are used. A relative URL
// becomes "/" followed by its raw form, with an empty query.
func NewContext(method string, u *url.URL, date string, brokerID int64, contentHash *string) Context {
	path, query := uriParts(u)
	return Context{
		Method:      method,
		Path:        path,
		Query:       query,
		Date:        date,
		BrokerID:    strconv.FormatInt(brokerID, 10),
		ContentHash: contentHash,
	}
}

// FormatDate formats t as the RFC1123 GMT date used in the Date header.
func FormatDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// CanonicalString builds the string the server reconstructs to verify a
// request signature. The element order is fixed.
func CanonicalString(c Context) string {
	var b strings.Builder

	b.WriteString(strings.ToUpper(c.Method))
	b.WriteByte('\n')
	b.WriteString(strings.ToLower(c.Path))
	b.WriteByte('\n')
	b.WriteString("date: ")
	b.WriteString(c.Date)
	b.WriteByte('\n')
	if c.ContentHash != nil {
		b.WriteString("x-content-sha256: ")
		b.WriteString(*c.ContentHash)
		b.WriteByte('\n')
	}
	b.WriteString("x-digipost-userid: ")
	b.WriteString(c.BrokerID)
	b.WriteByte('\n')
	b.WriteString(strings.ToLower(c.Query))
	b.WriteByte('\n')

	return b.String()
}

func uriParts(u *url.URL) (path, query string) {
	if u == nil {
		return "/", ""
	}
	if !u.IsAbs() && u.Host == "" {
		return "/" + u.String(), ""
	}
	path = u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return path, u.RawQuery
}
