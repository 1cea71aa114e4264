package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	var p PageRequest
	p.Defaults()

	if p.Page != 1 || p.PageSize != 20 || p.Sort != "date_desc" {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if p.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset())
	}

	p = PageRequest{Page: 3, PageSize: 10}
	if p.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p.Offset())
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{"date_asc", "date ASC, id ASC"},
		{"amount_desc", "amount DESC, id DESC"},
		{"", "date DESC, id DESC"},
		{"bogus", "date DESC, id DESC"},
	}
	for _, tt := range tests {
		p := PageRequest{Sort: tt.sort}
		if got := p.OrderClause(); got != tt.want {
			t.Errorf("OrderClause(%q) = %q, want %q", tt.sort, got, tt.want)
		}
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[int](nil, 2, 10, 25)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("nil data should become an empty slice")
	}
}
