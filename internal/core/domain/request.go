package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RequestType is the closed set of API listings the collector issues.
type RequestType uint8

const (
	RequestRegions RequestType = iota + 1
	RequestCategories
	RequestVideos
)

func (t RequestType) String() string {
	switch t {
	case RequestRegions:
		return "regions"
	case RequestCategories:
		return "categories"
	case RequestVideos:
		return "videos"
	default:
		return "invalid"
	}
}

// Param is a single request parameter. Value is either a string or an int.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered parameter list.
type Params []Param

// With returns a copy of p with key set to value, replacing an existing entry
// in place or appending a new one.
func (p Params) With(key string, value any) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Key: key, Value: value})
}

// Get returns the value for key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Text renders a value for a query string.
func (kv Param) Text() string {
	switch v := kv.Value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// MarshalJSON keeps request order, which is also the order in backup records.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FetchRequest is one logical API call. Build it with the New*Request
// constructors so Type and Params always agree.
type FetchRequest struct {
	Type   RequestType
	Params Params
}

// NewRegionsRequest lists the regions the API serves.
func NewRegionsRequest() FetchRequest {
	return FetchRequest{
		Type:   RequestRegions,
		Params: Params{{Key: "part", Value: "snippet"}},
	}
}

// NewCategoriesRequest lists the categories of one region.
func NewCategoriesRequest(regionCode string) FetchRequest {
	return FetchRequest{
		Type: RequestCategories,
		Params: Params{
			{Key: "part", Value: "snippet"},
			{Key: "regionCode", Value: regionCode},
		},
	}
}

// NewVideosRequest fetches one page of the most-popular chart for a region
// and category. An empty pageToken requests the first page.
func NewVideosRequest(regionCode, categoryID string, maxResults int, pageToken string) FetchRequest {
	params := Params{
		{Key: "part", Value: "snippet,statistics"},
		{Key: "chart", Value: "mostPopular"},
		{Key: "regionCode", Value: regionCode},
		{Key: "maxResults", Value: maxResults},
		{Key: "videoCategoryId", Value: categoryID},
	}
	if pageToken != "" {
		params = append(params, Param{Key: "pageToken", Value: pageToken})
	}
	return FetchRequest{Type: RequestVideos, Params: params}
}
