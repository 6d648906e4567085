package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(query string) Params {
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"limit=10&offset=30", 10, 30},
		{"limit=0", DefaultLimit, 0},
		{"limit=-5&offset=-5", DefaultLimit, 0},
		{"limit=500", MaxLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		got := paramsFor(tc.query)
		if got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
			t.Errorf("%q -> %+v, want limit %d offset %d", tc.query, got, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestHasMore(t *testing.T) {
	resp := NewResponse(nil, 45, 20, 20)
	if !resp.HasMore {
		t.Error("offset 20 + limit 20 < total 45 should have more")
	}
	resp = NewResponse(nil, 45, 20, 40)
	if resp.HasMore {
		t.Error("offset 40 + limit 20 >= total 45 should not have more")
	}
}

func TestNextOffset(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if p.NextOffset() != 60 {
		t.Errorf("NextOffset = %d, want 60", p.NextOffset())
	}
	if p.HasNext(45) {
		t.Error("no next page past the total")
	}
}
