package domain

import (
	"strings"
	"time"
)

// UnspecifiedCategoryID stands for "no category filter" in chart requests.
const UnspecifiedCategoryID = "0"

// retrievedAtLayout renders microseconds followed by three literal zeros so
// every timestamp carries nine fractional digits.
const retrievedAtLayout = "2006-01-02 15:04:05.000000"

// FormatRetrievedAt renders t in the lake's timestamp form, e.g.
// "2024-05-01 06:00:01.123456000Z".
func FormatRetrievedAt(t time.Time) string {
	return t.UTC().Format(retrievedAtLayout) + "000Z"
}

// NormalizePublishedAt rewrites an RFC 3339 timestamp into the space-separated
// nine-digit form used by the columnar schema. Unparseable input is returned
// with only the separator swapped.
func NormalizePublishedAt(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return strings.Replace(s, "T", " ", 1)
	}
	return t.UTC().Format("2006-01-02 15:04:05.000000000") + "Z"
}

// Metadata is the retrieval block stamped on every persisted record.
type Metadata struct {
	RetrievedAt   string `json:"retrieved_at"`
	RegionCode    string `json:"region_code,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	Rank          int    `json:"rank,omitempty"`
	RequestParams Params `json:"request_params,omitempty"`
}

// Envelope is a raw API response page. It is decoded loosely so records keep
// every field the API returns.
type Envelope map[string]any

// EmptyEnvelope is the soft result of a listing that does not exist.
func EmptyEnvelope() Envelope {
	return Envelope{"items": []any{}}
}

// Items returns the page items that decode as objects.
func (e Envelope) Items() []Item {
	raw, _ := e["items"].([]any)
	items := make([]Item, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			items = append(items, Item(m))
		}
	}
	return items
}

// NextPageToken returns the pagination cursor, empty on the last page.
func (e Envelope) NextPageToken() string {
	s, _ := e["nextPageToken"].(string)
	return s
}

// Stamp attaches metadata to the envelope for the backup sink.
func (e Envelope) Stamp(md Metadata) {
	e["metadata"] = md
}

// Item is one element of an envelope's items array.
type Item map[string]any

// ID returns the API identifier of the item.
func (it Item) ID() string {
	s, _ := it["id"].(string)
	return s
}

// Assignable reports the API's assignable flag on a category.
func (it Item) Assignable() bool {
	s, _ := it["snippet"].(map[string]any)
	b, _ := s["assignable"].(bool)
	return b
}

// NormalizePublishedAt rewrites snippet.publishedAt in place.
func (it Item) NormalizePublishedAt() {
	s, _ := it["snippet"].(map[string]any)
	if v, ok := s["publishedAt"].(string); ok {
		s["publishedAt"] = NormalizePublishedAt(v)
	}
}

// Stamp replaces the item's metadata block.
func (it Item) Stamp(md Metadata) {
	it["metadata"] = md
}

// UnspecifiedCategory is the synthetic category record for "no filter".
func UnspecifiedCategory() Item {
	return Item{
		"kind": "youtube#videoCategory",
		"id":   UnspecifiedCategoryID,
		"snippet": map[string]any{
			"title":      "Unspecified",
			"assignable": true,
		},
	}
}
