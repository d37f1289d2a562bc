package digipost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirosfoundation/go-digipost/pkg/apierror"
)

func inboxHandler(f *fakeDigipost) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeXML(w, http.StatusOK, fmt.Sprintf(`<inbox xmlns="http://api.digipost.no/schema/v8">
			<document>
				<id>17</id>
				<subject>Contract</subject>
				<sender>Acme AS</sender>
				<delivery-time>2024-03-01T12:00:00Z</delivery-time>
				<content-type>application/pdf</content-type>
				<link rel="https://api.digipost.no/relations/get_document_content" uri="%[1]s/1337/inbox/17/content"/>
				<link rel="https://api.digipost.no/relations/delete" uri="%[1]s/1337/inbox/17"/>
			</document>
		</inbox>`, f.server.URL))
	}
}

func TestClient_FetchInbox(t *testing.T) {
	f := newFakeDigipost(t)
	f.mux.HandleFunc("GET /1337/inbox", inboxHandler(f))
	client := newTestClient(t, f)

	inbox, err := client.FetchInbox(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, inbox.Documents, 1)

	doc := inbox.Documents[0]
	assert.Equal(t, int64(17), doc.ID)
	assert.Equal(t, "Acme AS", doc.Sender)
	require.NotNil(t, doc.DeliveryTime)
	assert.Nil(t, doc.FirstAccessed)

	assert.Equal(t, "limit=100&offset=0", f.last().RawQuery)

	_, err = client.FetchInbox(context.Background(), 20, 10)
	require.NoError(t, err)
	assert.Equal(t, "limit=10&offset=20", f.last().RawQuery)
}

func TestClient_InboxDocumentContentAndDelete(t *testing.T) {
	f := newFakeDigipost(t)
	f.mux.HandleFunc("GET /1337/inbox", inboxHandler(f))
	f.mux.HandleFunc("GET /1337/inbox/17/content", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.4")
	})
	f.mux.HandleFunc("DELETE /1337/inbox/17", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, f)
	ctx := context.Background()

	inbox, err := client.FetchInbox(ctx, 0, 0)
	require.NoError(t, err)
	doc := inbox.Documents[0]

	stream, err := client.FetchInboxDocument(ctx, doc)
	require.NoError(t, err)
	content, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Equal(t, "%PDF-1.4", string(content))

	require.NoError(t, client.DeleteInboxDocument(ctx, doc))
	assert.Equal(t, 1, f.count(http.MethodDelete, "/1337/inbox/17"))
}

func TestClient_DeleteInboxDocumentNotFound(t *testing.T) {
	f := newFakeDigipost(t)
	client := newTestClient(t, f)

	doc := InboxDocument{ID: 3, Links: Links{{Rel: "https://api.digipost.no/relations/delete", URI: f.url("/1337/inbox/3")}}}
	err := client.DeleteInboxDocument(context.Background(), doc)

	remote, ok := apierror.IsRemote(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, remote.StatusCode)
}
