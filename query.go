package entkit

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// =====================================
// List Query Building
// =====================================

// Sort is one field ordering on a list request.
type Sort struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// ListParams are the parameters of one list request: paging, free-text
// search, sorting and filter values. Filter values are scalars or slices of
// scalars keyed by filter key.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Sort    []Sort
	Filters map[string]interface{}
}

// QueryValues encodes the parameters onto the wire format of the list
// endpoint: page, limit, search, sortBy/sortOrder, and one filter[key]
// parameter per filter value.
func (p ListParams) QueryValues() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(maxInt(p.Page, 1)))
	q.Set("limit", strconv.Itoa(maxInt(p.Limit, 1)))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if len(p.Sort) > 0 {
		q.Set("sortBy", p.Sort[0].Field)
		direction := p.Sort[0].Direction
		if direction == "" {
			direction = SortAsc
		}
		q.Set("sortOrder", string(direction))
	}
	for _, key := range sortedFilterKeys(p.Filters) {
		name := "filter[" + key + "]"
		switch value := p.Filters[key].(type) {
		case []interface{}:
			for _, v := range value {
				q.Add(name, fmt.Sprintf("%v", v))
			}
		case []string:
			for _, v := range value {
				q.Add(name, v)
			}
		default:
			q.Add(name, fmt.Sprintf("%v", value))
		}
	}
	return q
}

// CacheKey returns the deterministic cache key of a list request: the slug
// plus every parameter that shapes the result set. Two requests share a key
// exactly when they must produce the same page.
func (p ListParams) CacheKey(slug string) string {
	var b strings.Builder
	b.WriteString(slug)
	b.WriteString("|p=")
	b.WriteString(strconv.Itoa(p.Page))
	b.WriteString("|l=")
	b.WriteString(strconv.Itoa(p.Limit))
	b.WriteString("|q=")
	b.WriteString(p.Search)
	for _, s := range p.Sort {
		b.WriteString("|s=")
		b.WriteString(s.Field)
		b.WriteString(":")
		b.WriteString(string(s.Direction))
	}
	for _, key := range sortedFilterKeys(p.Filters) {
		b.WriteString("|f=")
		b.WriteString(key)
		b.WriteString(":")
		b.WriteString(fmt.Sprintf("%v", p.Filters[key]))
	}
	return b.String()
}

func sortedFilterKeys(filters map[string]interface{}) []string {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TotalPages derives the page count: max(1, ceil(total/limit)). A limit of
// zero or less counts as one page.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
