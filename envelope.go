package entkit

import (
	"encoding/json"
	"strings"
)

// =====================================
// List Envelope Normalization
// =====================================

// ListResult is the uniform shape every list response normalizes into.
type ListResult struct {
	Data       []Record `json:"data"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}

// DecodeListEnvelope normalizes a list response body. The remote surface is
// not uniform across entities, so the array is looked up under a fixed
// priority of keys — data, slug, lowercased plural name, slug+"s" — taking
// the first non-empty match. Totals resolve from top-level fields, else a
// nested pagination object, else the returned array length. This is a
// deliberate compatibility shim with a fixed, testable order: a well-formed
// but unexpected envelope yields an empty result, never an error.
func DecodeListEnvelope(config EntityConfiguration, body []byte, limit int) (ListResult, error) {
	// A bare top-level array is the simplest envelope of all.
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []interface{}
		if err := json.Unmarshal(body, &items); err != nil {
			return ListResult{}, err
		}
		records := toRecords(items)
		total := len(records)
		return ListResult{Data: records, Total: total, TotalPages: TotalPages(total, limit)}, nil
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ListResult{}, err
	}

	records := pickRecords(config, envelope)

	total, totalOK := intFromEnvelope(envelope, "total", "totalItems", "count")
	pages, pagesOK := intFromEnvelope(envelope, "totalPages", "total_pages", "pageCount")
	if pagination, ok := envelope["pagination"].(map[string]interface{}); ok {
		if !totalOK {
			total, totalOK = intFromEnvelope(pagination, "total", "totalItems", "count")
		}
		if !pagesOK {
			pages, pagesOK = intFromEnvelope(pagination, "totalPages", "total_pages", "pageCount")
		}
	}
	if !totalOK {
		total = len(records)
	}
	if !pagesOK {
		pages = TotalPages(total, limit)
	}

	return ListResult{Data: records, Total: total, TotalPages: pages}, nil
}

// pickRecords selects the record array from the envelope under the fixed key
// priority, preferring the first non-empty candidate and falling back to the
// first present-but-empty one.
func pickRecords(config EntityConfiguration, envelope map[string]interface{}) []Record {
	candidates := []string{
		"data",
		config.Slug,
		strings.ToLower(config.PluralName),
		config.Slug + "s",
	}

	var firstPresent []Record
	seen := false
	for _, key := range candidates {
		items, ok := envelope[key].([]interface{})
		if !ok {
			continue
		}
		records := toRecords(items)
		if len(records) > 0 {
			return records
		}
		if !seen {
			firstPresent = records
			seen = true
		}
	}
	if seen {
		return firstPresent
	}
	return nil
}

func toRecords(items []interface{}) []Record {
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records
}

func intFromEnvelope(m map[string]interface{}, keys ...string) (int, bool) {
	for _, key := range keys {
		if f, ok := asFloat(m[key]); ok {
			return int(f), true
		}
	}
	return 0, false
}
