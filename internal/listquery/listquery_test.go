package listquery

import (
	"fmt"
	"reflect"
	"testing"
)

type row struct {
	name   string
	status string
}

func (r row) SearchFields() []string { return []string{r.name} }
func (r row) CurrentStatus() string  { return r.status }

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		status := "pending"
		if i%3 == 0 {
			status = "approved"
		}
		out[i] = row{name: fmt.Sprintf("Creator %02d", i), status: status}
	}
	return out
}

func TestPaginateThirteenItems(t *testing.T) {
	items := rows(13)
	tests := []struct {
		page     int
		expected int
	}{
		{1, 6},
		{2, 6},
		{3, 1},
		{4, 0},
		{0, 6},
		{-3, 6},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d", tt.page), func(t *testing.T) {
			p := Paginate(items, tt.page, 6)
			if len(p.Items) != tt.expected {
				t.Errorf("page %d: got %d items, want %d", tt.page, len(p.Items), tt.expected)
			}
			if p.TotalPages != 3 {
				t.Errorf("TotalPages = %d, want 3", p.TotalPages)
			}
			if p.Total != 13 {
				t.Errorf("Total = %d, want 13", p.Total)
			}
		})
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]row{}, 1, 6)
	if p.TotalPages != 0 || len(p.Items) != 0 || len(p.Pages) != 0 {
		t.Errorf("unexpected page for empty input: %+v", p)
	}
	if p.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
}

func TestFilterStatus(t *testing.T) {
	items := rows(9)

	all := FilterStatus(items, "all")
	if len(all) != 9 {
		t.Errorf("all: got %d, want 9", len(all))
	}
	if len(FilterStatus(items, "")) != 9 {
		t.Error("empty status should keep everything")
	}

	approved := FilterStatus(items, "approved")
	if len(approved) != 3 {
		t.Fatalf("approved: got %d, want 3", len(approved))
	}
	for _, r := range approved {
		if r.status != "approved" {
			t.Errorf("unexpected status %q", r.status)
		}
	}

	// idempotent
	again := FilterStatus(approved, "approved")
	if !reflect.DeepEqual(again, approved) {
		t.Error("filtering twice changed the result")
	}

	if len(FilterStatus(items, "rejected")) != 0 {
		t.Error("expected no rejected rows")
	}
}

func TestSearch(t *testing.T) {
	items := []row{{name: "Alice Travel"}, {name: "Bob Gaming"}, {name: "alice food"}}

	tests := []struct {
		q        string
		expected int
	}{
		{"", 3},
		{"  ", 3},
		{"alice", 2},
		{"ALICE", 2},
		{"gam", 1},
		{"zzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			if got := len(Search(items, tt.q)); got != tt.expected {
				t.Errorf("Search(%q) = %d items, want %d", tt.q, got, tt.expected)
			}
		})
	}
}

func TestApply(t *testing.T) {
	items := rows(30)
	p := Apply(items, Params{Status: "approved", Query: "creator", Page: 2, PageSize: 6})
	// 10 approved rows -> pages of 6 and 4
	if p.Total != 10 || p.TotalPages != 2 || len(p.Items) != 4 {
		t.Errorf("got total=%d pages=%d items=%d", p.Total, p.TotalPages, len(p.Items))
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current  int
		total    int
		expected []int
	}{
		{1, 10, []int{1, 2, 3, 4, 5}},
		{2, 10, []int{1, 2, 3, 4, 5}},
		{5, 10, []int{3, 4, 5, 6, 7}},
		{9, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{2, 3, []int{1, 2, 3}},
		{1, 1, []int{1}},
		{1, 0, []int{}},
		{42, 10, []int{6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.current, tt.total), func(t *testing.T) {
			got := Window(tt.current, tt.total, WindowSize)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Window(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.expected)
			}
		})
	}
}

func TestParamsNormalize(t *testing.T) {
	p := Params{Status: "ALL", Query: "  x ", Page: 0, PageSize: 500}.Normalize(6)
	if p.Page != 1 || p.PageSize != MaxPageSize || p.Status != "" || p.Query != "x" {
		t.Errorf("unexpected normalized params: %+v", p)
	}
	if p.Offset() != 0 {
		t.Errorf("Offset = %d", p.Offset())
	}

	p = Params{Page: 3}.Normalize(6)
	if p.PageSize != 6 || p.Offset() != 12 {
		t.Errorf("unexpected params: %+v offset=%d", p, p.Offset())
	}
}
