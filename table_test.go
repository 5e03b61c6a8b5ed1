package entkit

import (
	"reflect"
	"testing"
)

func tableConfig(slug string, pageSize int) EntityConfiguration {
	return EntityConfiguration{
		Name:            slug,
		Slug:            slug,
		DefaultPageSize: pageSize,
	}.Normalize()
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{7, 10, 1},
		{100, 25, 4},
		{101, 25, 5},
		{5, 0, 1},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.limit); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.total, c.limit, got, c.want)
		}
	}
}

func TestTableStateInitial(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))

	p := state.Pagination()
	if p.Page != 1 || p.Limit != 10 || p.Total != 0 || p.TotalPages != 1 {
		t.Errorf("Unexpected initial pagination: %+v", p)
	}
	if state.Search() != "" || len(state.Filters()) != 0 || state.SelectionCount() != 0 {
		t.Error("Expected empty search, filters and selection initially")
	}
}

func TestTableStatePageResets(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))

	state.SetPage(4)
	state.SetLimit(50)
	if state.Pagination().Page != 1 {
		t.Error("SetLimit must reset page to 1")
	}

	state.SetPage(4)
	state.SetSearch("ada")
	if state.Pagination().Page != 1 {
		t.Error("SetSearch must reset page to 1")
	}

	state.SetPage(4)
	state.SetFilter("status", "active")
	if state.Pagination().Page != 1 {
		t.Error("SetFilter must reset page to 1")
	}
}

func TestTableStateFilterRemovalIdempotent(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))
	state.SetFilter("status", "active")

	state.SetFilter("status", nil)
	once := state.Filters()
	state.SetFilter("status", nil)
	twice := state.Filters()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Removing a filter twice diverged: %v vs %v", once, twice)
	}
	if _, ok := twice["status"]; ok {
		t.Error("Expected filter key to be absent, not empty")
	}
}

func TestTableStateSingleSort(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))

	state.SetSorting("name", SortAsc)
	state.SetSorting("created_at", SortDesc)

	sorting := state.Sorting()
	if len(sorting) != 1 {
		t.Fatalf("Expected a single active sort, got %d", len(sorting))
	}
	if sorting[0].Field != "created_at" || sorting[0].Direction != SortDesc {
		t.Errorf("Expected replacement sort, got %+v", sorting[0])
	}
}

func TestTableStateSelectionSpansPages(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))

	state.Select("a")
	state.ToggleSelection("b")
	state.SetPage(3)
	state.SetSorting("name", SortAsc)
	state.SetFilter("status", "active")

	if state.SelectionCount() != 2 {
		t.Errorf("Expected selection to survive page/sort/filter changes, got %d", state.SelectionCount())
	}

	state.ToggleSelection("b")
	if state.IsSelected("b") {
		t.Error("Expected toggle to deselect b")
	}
	if !state.IsSelected("a") {
		t.Error("Expected a to stay selected")
	}
}

func TestTableStateResetOnEntityChange(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))
	state.SetPage(7)
	state.SetSearch("ada")
	state.SetFilter("status", "active")
	state.Select("a")
	state.SetTotal(1000)

	state.Reset(tableConfig("listings", 25))

	p := state.Pagination()
	if p.Page != 1 {
		t.Errorf("Expected page 1 after entity switch, got %d", p.Page)
	}
	if p.Limit != 25 {
		t.Errorf("Expected new default limit 25, got %d", p.Limit)
	}
	if state.SelectionCount() != 0 {
		t.Error("Expected empty selection after entity switch")
	}
	if state.Search() != "" || len(state.Filters()) != 0 {
		t.Error("Expected search and filters cleared after entity switch")
	}
	if state.Slug() != "listings" {
		t.Errorf("Expected slug listings, got %q", state.Slug())
	}
}

func TestTableStateSetTotalKeepsPage(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))
	state.SetPage(2)
	state.SetTotal(7)

	p := state.Pagination()
	if p.TotalPages != 1 {
		t.Errorf("Expected totalPages 1 for 7/10, got %d", p.TotalPages)
	}
	if p.Page != 2 {
		t.Errorf("Expected page to stay at requested value, got %d", p.Page)
	}
}

func TestTableStateListParams(t *testing.T) {
	state := NewTableState(tableConfig("users", 10))
	state.SetSearch("ada")
	state.SetSorting("name", SortDesc)
	state.SetFilter("status", "active")
	state.SetPage(2)

	params := state.ListParams()
	if params.Page != 2 || params.Limit != 10 || params.Search != "ada" {
		t.Errorf("Unexpected params: %+v", params)
	}
	if len(params.Sort) != 1 || params.Sort[0].Field != "name" {
		t.Errorf("Unexpected sort: %+v", params.Sort)
	}
	if params.Filters["status"] != "active" {
		t.Errorf("Unexpected filters: %v", params.Filters)
	}

	// The snapshot is detached from later state changes.
	state.SetFilter("status", nil)
	if params.Filters["status"] != "active" {
		t.Error("Expected snapshot filters to be a copy")
	}
}
