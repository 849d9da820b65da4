package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/trendlake/internal/core/domain"
	"gopkg.in/yaml.v2"
)

func TestEntry_Decoding(t *testing.T) {
	var fromYAML map[string]Entry
	err := yaml.Unmarshal([]byte("\"00\": k0\n\"06\":\n  primary: p6\n  emergency: e6\n"), &fromYAML)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if fromYAML["00"] != (Entry{Primary: "k0"}) || fromYAML["06"] != (Entry{Primary: "p6", Emergency: "e6"}) {
		t.Errorf("yaml entries = %+v", fromYAML)
	}

	doc := NewDocument(staticObject(`{"12":"k12","18":{"primary":"p18","emergency":"e18"}}`), "admin", "credentials.json")
	entries, err := doc.load(context.Background())
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if entries["12"] != (Entry{Primary: "k12"}) || entries["18"].Emergency != "e18" {
		t.Errorf("json entries = %+v", entries)
	}
}

func TestStatic_Get(t *testing.T) {
	s := NewStatic(map[string]Entry{"00": {Primary: "p0"}, "06": {Primary: "p6", Emergency: "e6"}})
	ctx := context.Background()

	cred, err := s.Get(ctx, domain.Period06, domain.TierEmergency)
	if err != nil || cred.Token != "e6" || cred.Tier != domain.TierEmergency || cred.Period != domain.Period06 {
		t.Errorf("Get(06, emergency) = %+v, %v", cred, err)
	}
	if _, err := s.Get(ctx, domain.Period00, domain.TierEmergency); !errors.Is(err, ErrNoCredential) {
		t.Errorf("missing emergency err = %v", err)
	}
	if _, err := s.Get(ctx, domain.Period18, domain.TierPrimary); !errors.Is(err, ErrNoCredential) {
		t.Errorf("missing period err = %v", err)
	}
}

type fakeHashes map[string]string

func (h fakeHashes) GetCredential(ctx context.Context, prefix, period, tier string) (string, bool, error) {
	if prefix == "broken" {
		return "", false, errors.New("connection refused")
	}
	v, ok := h[prefix+":"+period+"/"+tier]
	return v, ok, nil
}

func TestRedis_Get(t *testing.T) {
	store := fakeHashes{"credentials:12/primary": "p12"}
	ctx := context.Background()

	cred, err := NewRedis(store, "credentials").Get(ctx, domain.Period12, domain.TierPrimary)
	if err != nil || cred.Token != "p12" {
		t.Errorf("Get = %+v, %v", cred, err)
	}
	if _, err := NewRedis(store, "credentials").Get(ctx, domain.Period12, domain.TierEmergency); !errors.Is(err, ErrNoCredential) {
		t.Errorf("missing tier err = %v", err)
	}
	_, err = NewRedis(store, "broken").Get(ctx, domain.Period12, domain.TierPrimary)
	if err == nil || errors.Is(err, ErrNoCredential) {
		t.Errorf("store failure err = %v", err)
	}
}

type countingObject struct {
	body  string
	calls int
}

func (o *countingObject) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	o.calls++
	if bucket != "admin" || key != "credentials.json" {
		return nil, errors.New("NoSuchKey")
	}
	return []byte(o.body), nil
}

func staticObject(body string) ObjectGetter {
	return &countingObject{body: body}
}

func TestDocument_CachesAfterFirstFetch(t *testing.T) {
	obj := &countingObject{body: `{"00":{"primary":"p0","emergency":"e0"}}`}
	d := NewDocument(obj, "admin", "credentials.json")
	ctx := context.Background()

	for _, tier := range []domain.Tier{domain.TierPrimary, domain.TierEmergency} {
		if _, err := d.Get(ctx, domain.Period00, tier); err != nil {
			t.Fatalf("Get(%s): %v", tier, err)
		}
	}
	if obj.calls != 1 {
		t.Errorf("document fetched %d times, want 1", obj.calls)
	}
}

func TestDocument_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := NewDocument(&countingObject{}, "admin", "other.json").Get(ctx, domain.Period00, domain.TierPrimary); err == nil {
		t.Error("expected fetch error")
	}
	if _, err := NewDocument(&countingObject{body: "not json"}, "admin", "credentials.json").Get(ctx, domain.Period00, domain.TierPrimary); err == nil {
		t.Error("expected parse error")
	}
}
