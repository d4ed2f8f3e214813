package pagination

import "testing"

func TestParseDefaults(t *testing.T) {
	p, err := Parse("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 1 || p.Limit != 20 {
		t.Fatalf("expected defaults 1/20 got %d/%d", p.Page, p.Limit)
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct{ page, limit string }{
		{"0", ""},
		{"-1", ""},
		{"abc", ""},
		{"", "0"},
		{"", "-5"},
		{"", "101"},
		{"", "xyz"},
		{"1.5", "10"},
	}
	for _, c := range cases {
		if _, err := Parse(c.page, c.limit); err != ErrInvalidParams {
			t.Fatalf("page=%q limit=%q: expected ErrInvalidParams got %v", c.page, c.limit, err)
		}
	}
}

func TestParseBounds(t *testing.T) {
	if _, err := Parse("1", "1"); err != nil {
		t.Fatalf("limit=1 should pass: %v", err)
	}
	if _, err := Parse("1", "100"); err != nil {
		t.Fatalf("limit=100 should pass: %v", err)
	}
}

func TestSkip(t *testing.T) {
	for _, c := range []struct {
		page, limit, want int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 50, 100},
		{10, 7, 63},
	} {
		p := Params{Page: c.page, Limit: c.limit}
		if got := p.Skip(); got != c.want {
			t.Fatalf("page=%d limit=%d: expected skip %d got %d", c.page, c.limit, c.want, got)
		}
	}
}

func TestMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 20}
	m := p.Meta(45)
	if m.TotalPages != 3 {
		t.Fatalf("expected 3 pages got %d", m.TotalPages)
	}
	if !m.HasNextPage || !m.HasPrevPage {
		t.Fatalf("expected both nav flags on page 2/3, got next=%v prev=%v", m.HasNextPage, m.HasPrevPage)
	}
	last := Params{Page: 3, Limit: 20}.Meta(45)
	if last.HasNextPage {
		t.Fatalf("expected no next page on last page")
	}
	empty := Params{Page: 1, Limit: 20}.Meta(0)
	if empty.TotalPages != 0 || empty.HasNextPage || empty.HasPrevPage {
		t.Fatalf("expected empty meta, got %+v", empty)
	}
}
