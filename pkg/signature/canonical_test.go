package signature

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "Mon, 01 Jan 2024 00:00:00 GMT"

func strPtr(s string) *string { return &s }

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCanonicalString_PostWithBody(t *testing.T) {
	hash := ContentHash([]byte(`{"x":1}`))
	ctx := NewContext("POST", mustParse(t, "https://api.digipost.no/1337/message"), testDate, 1337, &hash)

	got := CanonicalString(ctx)

	want := "POST\n" +
		"/1337/message\n" +
		"date: Mon, 01 Jan 2024 00:00:00 GMT\n" +
		"x-content-sha256: UEG/H3E98gR4Q1PoL2pKU1kxy2Tx9LSlrq/8tyCRiyI=\n" +
		"x-digipost-userid: 1337\n" +
		"\n"
	assert.Equal(t, want, got)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "", lines[5])
}

func TestCanonicalString_GetWithoutBody(t *testing.T) {
	ctx := NewContext("GET", mustParse(t, "https://api.digipost.no/1337/inbox?a=1&b=2"), testDate, 1337, nil)

	got := CanonicalString(ctx)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "GET", lines[0])
	assert.Equal(t, "/1337/inbox", lines[1])
	assert.Equal(t, "x-digipost-userid: 1337", lines[3])
	assert.Equal(t, "a=1&b=2", lines[4])
	assert.NotContains(t, got, "x-content-sha256")
}

func TestCanonicalString_Deterministic(t *testing.T) {
	ctx := Context{
		Method:      "get",
		Path:        "/Sender/Archive",
		Query:       "Offset=0&Limit=100",
		Date:        testDate,
		BrokerID:    "42",
		ContentHash: strPtr("abc="),
	}

	first := CanonicalString(ctx)
	for i := 0; i < 10; i++ {
		if got := CanonicalString(ctx); got != first {
			t.Fatalf("iteration %d: got %q, want %q", i, got, first)
		}
	}

	upper := ctx
	upper.Method = "GET"
	assert.Equal(t, first, CanonicalString(upper))
}

func TestCanonicalString_LowerCasesPathAndQuery(t *testing.T) {
	ctx := NewContext("get", mustParse(t, "https://api.digipost.no/ABC/Recipient/Search/OLA?Name=Nordmann"), testDate, 1, nil)

	got := CanonicalString(ctx)

	assert.Contains(t, got, "/abc/recipient/search/ola\n")
	assert.Contains(t, got, "name=nordmann\n")
	assert.NotContains(t, got, "OLA")
	assert.NotContains(t, got, "Nordmann")
	assert.True(t, strings.HasPrefix(got, "GET\n"))
}

func TestCanonicalString_HashLineOnlyWithBody(t *testing.T) {
	withEmptyBody := CanonicalString(NewContext("PUT", mustParse(t, "https://x/y"), testDate, 1, strPtr(ContentHash(nil))))
	withoutBody := CanonicalString(NewContext("PUT", mustParse(t, "https://x/y"), testDate, 1, nil))

	assert.Contains(t, withEmptyBody, "x-content-sha256: 47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=\n")
	assert.NotContains(t, withoutBody, "x-content-sha256")
}

func TestNewContext_RelativeURI(t *testing.T) {
	ctx := NewContext("GET", mustParse(t, "inbox"), testDate, 7, nil)
	assert.Equal(t, "/inbox", ctx.Path)
	assert.Equal(t, "", ctx.Query)
	assert.Equal(t, "7", ctx.BrokerID)
}

func TestNewContext_EmptyPath(t *testing.T) {
	ctx := NewContext("GET", mustParse(t, "https://api.digipost.no"), testDate, 7, nil)
	assert.Equal(t, "/", ctx.Path)
}

func TestFormatDate(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 1, 1, 0, 0, 0, loc)
	assert.Equal(t, testDate, FormatDate(ts))
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", ContentHash([]byte{}))
	assert.Equal(t, ContentHash([]byte("abc")), ContentHash([]byte("abc")))
	assert.NotEqual(t, ContentHash([]byte("abc")), ContentHash([]byte("abd")))
}
