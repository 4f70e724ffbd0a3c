// Package search indexes visitor and parcel records into Elasticsearch.
// Indexing is best effort; callers log failures and move on.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

const (
	TypeVisitor = "visitor"
	TypeParcel  = "parcel"

	defaultSize = 10
	maxSize     = 50
	timeout     = 3 * time.Second
)

type RecordIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewRecordIndex(es *elasticsearch.Client, index string) *RecordIndex {
	return &RecordIndex{ES: es, Index: index}
}

func (r *RecordIndex) enabled() bool {
	return r != nil && r.ES != nil && r.Index != ""
}

func docID(recordType string, id int64) string {
	return recordType + "-" + strconv.FormatInt(id, 10)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func VisitorDoc(v *entity.Visitor) map[string]any {
	return map[string]any{
		"record_type":   TypeVisitor,
		"id":            v.ID,
		"resident_id":   v.ResidentID,
		"visitor_name":  v.Name,
		"visitor_phone": v.Phone,
		"purpose":       v.Purpose,
		"status":        string(v.Status),
		"expected_at":   formatTime(v.ExpectedAt),
		"created_at":    v.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ParcelDoc(p *entity.Parcel) map[string]any {
	return map[string]any{
		"record_type":   TypeParcel,
		"id":            p.ID,
		"resident_id":   p.ResidentID,
		"parcel_number": p.ParcelNumber,
		"sender_name":   p.SenderName,
		"sender_phone":  p.SenderPhone,
		"description":   p.Description,
		"status":        string(p.Status),
		"received_at":   formatTime(p.ReceivedAt),
		"created_at":    p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (r *RecordIndex) IndexVisitor(ctx context.Context, v *entity.Visitor) error {
	return r.index(ctx, docID(TypeVisitor, v.ID), VisitorDoc(v))
}

func (r *RecordIndex) IndexParcel(ctx context.Context, p *entity.Parcel) error {
	return r.index(ctx, docID(TypeParcel, p.ID), ParcelDoc(p))
}

func (r *RecordIndex) index(ctx context.Context, id string, doc map[string]any) error {
	if !r.enabled() {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: r.Index, DocumentID: id, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := req.Do(c, r.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", id, res.Status())
	}
	return nil
}

// SearchQuery builds a multi_match restricted to one record type.
func SearchQuery(recordType, q string, size int) map[string]any {
	fields := []string{"visitor_name^2", "visitor_phone", "purpose"}
	if recordType == TypeParcel {
		fields = []string{"parcel_number^3", "sender_name^2", "sender_phone", "description"}
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{"query": q, "fields": fields},
				},
				"filter": map[string]any{
					"term": map[string]any{"record_type": recordType},
				},
			},
		},
		"size": size,
	}
}

// ClampSize applies the default of 10 and the cap of 50.
func ClampSize(size int) int {
	if size <= 0 {
		return defaultSize
	}
	if size > maxSize {
		return maxSize
	}
	return size
}

// Search returns matching documents; an unconfigured index yields none.
func (r *RecordIndex) Search(ctx context.Context, recordType, q string, size int) ([]map[string]any, error) {
	if !r.enabled() {
		return []map[string]any{}, nil
	}
	b, err := json.Marshal(SearchQuery(recordType, q, ClampSize(size)))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := r.ES.Search(r.ES.Search.WithContext(c), r.ES.Search.WithIndex(r.Index), r.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
