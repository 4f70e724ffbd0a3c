package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

func TestClampSize(t *testing.T) {
	assert.Equal(t, 10, ClampSize(0))
	assert.Equal(t, 25, ClampSize(25))
	assert.Equal(t, 50, ClampSize(500))
}

func TestSearchQueryFiltersByType(t *testing.T) {
	q := SearchQuery(TypeParcel, "PKG", 5)
	filter := q["query"].(map[string]any)["bool"].(map[string]any)["filter"].(map[string]any)
	assert.Equal(t, map[string]any{"record_type": TypeParcel}, filter["term"])
	assert.Equal(t, 5, q["size"])
}

func TestDocs(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	v := VisitorDoc(&entity.Visitor{ID: 3, ResidentID: 9, Name: "Budi", Status: entity.VisitorNew, CreatedAt: now})
	assert.Equal(t, "visitor", v["record_type"])
	assert.Equal(t, "new", v["status"])
	assert.Nil(t, v["expected_at"])

	p := ParcelDoc(&entity.Parcel{ID: 4, ParcelNumber: "PKG-1", Status: entity.ParcelReceived, ReceivedAt: &now, CreatedAt: now})
	assert.Equal(t, "2024-04-01T12:00:00Z", p["received_at"])
	assert.Equal(t, "parcel-4", docID(TypeParcel, 4))
}

func TestDisabledIndexIsNoop(t *testing.T) {
	var idx *RecordIndex
	assert.NoError(t, idx.IndexVisitor(context.Background(), &entity.Visitor{}))
	hits, err := idx.Search(context.Background(), TypeVisitor, "x", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchAgainstStubServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(r.URL.Path, "_search") {
			assert.Contains(t, string(body), `"record_type":"visitor"`)
			_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":1,"visitor_name":"Budi"}}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer srv.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	idx := NewRecordIndex(es, "vpms-records")

	require.NoError(t, idx.IndexVisitor(context.Background(), &entity.Visitor{ID: 1, Name: "Budi"}))
	hits, err := idx.Search(context.Background(), TypeVisitor, "budi", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Budi", hits[0]["visitor_name"])
}
