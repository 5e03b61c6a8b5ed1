package entkit

import "sort"

// =====================================
// Table State Controller
// =====================================

// Pagination is the paging slice of a table state. TotalPages always equals
// max(1, ceil(Total/Limit)).
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TableState owns the client-held view state of one entity's list: paging,
// sorting, filter values, free-text search and row selection. It is a value
// object with deterministic transitions, owned by exactly one view; it is
// not safe for concurrent use.
//
// Any transition that changes the result set resets the page to 1. Selection
// survives page, sort and filter changes within the same entity and is
// cleared only by a Reset (entity change) or ClearSelection.
type TableState struct {
	slug       string
	pagination Pagination
	sorting    []Sort
	filters    map[string]interface{}
	search     string
	selected   map[string]struct{}
}

// NewTableState creates the initial state for the entity: page 1, the
// configured default page size, no filters, search or selection.
func NewTableState(config EntityConfiguration) *TableState {
	limit := config.DefaultPageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &TableState{
		slug:       config.Slug,
		pagination: Pagination{Page: 1, Limit: limit, TotalPages: 1},
		filters:    make(map[string]interface{}),
		selected:   make(map[string]struct{}),
	}
}

// Slug returns the entity this state belongs to.
func (s *TableState) Slug() string { return s.slug }

// Pagination returns the current paging slice.
func (s *TableState) Pagination() Pagination { return s.pagination }

// Search returns the current free-text search.
func (s *TableState) Search() string { return s.search }

// Sorting returns the active sort, at most one entry.
func (s *TableState) Sorting() []Sort {
	return append([]Sort(nil), s.sorting...)
}

// Filters returns a copy of the active filter values.
func (s *TableState) Filters() map[string]interface{} {
	filters := make(map[string]interface{}, len(s.filters))
	for k, v := range s.filters {
		filters[k] = v
	}
	return filters
}

// SetPage moves to the given page, clamped to at least 1.
func (s *TableState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.pagination.Page = page
}

// SetLimit changes the page size and resets to page 1.
func (s *TableState) SetLimit(limit int) {
	if limit < 1 {
		limit = 1
	}
	s.pagination.Limit = limit
	s.pagination.Page = 1
	s.pagination.TotalPages = TotalPages(s.pagination.Total, limit)
}

// SetSearch replaces the free-text search and resets to page 1.
func (s *TableState) SetSearch(search string) {
	s.search = search
	s.pagination.Page = 1
}

// SetFilter sets one filter value and resets to page 1. A nil value removes
// the key entirely — an absent filter, not an empty one — so setting nil
// twice is the same as setting it once.
func (s *TableState) SetFilter(key string, value interface{}) {
	if value == nil {
		delete(s.filters, key)
	} else {
		s.filters[key] = value
	}
	s.pagination.Page = 1
}

// ClearFilters removes every filter and resets to page 1.
func (s *TableState) ClearFilters() {
	s.filters = make(map[string]interface{})
	s.pagination.Page = 1
}

// SetSorting replaces the single active sort. Multi-column sort is not
// supported; the previous sort is discarded.
func (s *TableState) SetSorting(field string, direction SortDirection) {
	if direction == "" {
		direction = SortAsc
	}
	s.sorting = []Sort{{Field: field, Direction: direction}}
}

// ClearSorting removes the active sort.
func (s *TableState) ClearSorting() {
	s.sorting = nil
}

// SetTotal records the result-set size reported by the last list response
// and rederives the page count. The current page is left where it was
// requested.
func (s *TableState) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	s.pagination.Total = total
	s.pagination.TotalPages = TotalPages(total, s.pagination.Limit)
}

// Select marks a row id as selected.
func (s *TableState) Select(id string) {
	s.selected[id] = struct{}{}
}

// Deselect removes a row id from the selection.
func (s *TableState) Deselect(id string) {
	delete(s.selected, id)
}

// ToggleSelection flips the selection of a row id.
func (s *TableState) ToggleSelection(id string) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
}

// SetSelection replaces the selection with the given ids.
func (s *TableState) SetSelection(ids []string) {
	s.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.selected[id] = struct{}{}
	}
}

// ClearSelection removes every selected id.
func (s *TableState) ClearSelection() {
	s.selected = make(map[string]struct{})
}

// IsSelected reports whether a row id is selected.
func (s *TableState) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the selected row ids in sorted order.
func (s *TableState) SelectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectionCount returns the number of selected rows.
func (s *TableState) SelectionCount() int {
	return len(s.selected)
}

// Reset returns the state to its initial value for the given configuration.
// Called on every entity change so no state leaks across entities.
func (s *TableState) Reset(config EntityConfiguration) {
	*s = *NewTableState(config)
}

// ListParams snapshots the state into the parameters of the next list
// request.
func (s *TableState) ListParams() ListParams {
	return ListParams{
		Page:    s.pagination.Page,
		Limit:   s.pagination.Limit,
		Search:  s.search,
		Sort:    s.Sorting(),
		Filters: s.Filters(),
	}
}
