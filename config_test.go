package entkit

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	config := EntityConfiguration{Name: "Insurance Policy"}.Normalize()

	if config.Slug != "insurance-policy" {
		t.Errorf("Expected derived slug, got %q", config.Slug)
	}
	if config.PluralName != "Insurance Policys" {
		// Naive pluralization on purpose; callers wanting "Policies" set it.
		t.Errorf("Expected name+s plural, got %q", config.PluralName)
	}
	if config.DefaultPageSize != DefaultPageSize {
		t.Errorf("Expected default page size, got %d", config.DefaultPageSize)
	}
	if config.Endpoints.Base != "/insurance-policy" {
		t.Errorf("Expected base derived from slug, got %q", config.Endpoints.Base)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	config := EntityConfiguration{
		Name:            "Person",
		PluralName:      "People",
		Slug:            "people",
		DefaultPageSize: 50,
		Endpoints:       Endpoints{Base: "/api/people"},
	}.Normalize()

	if config.PluralName != "People" || config.DefaultPageSize != 50 || config.Endpoints.Base != "/api/people" {
		t.Errorf("Expected explicit values untouched, got %+v", config)
	}
}

func TestNormalizeOptionsCopy(t *testing.T) {
	a := EntityConfiguration{Name: "A"}.Normalize()
	a.PageSizeOptions[0] = 999

	if DefaultPageSizeOptions[0] == 999 {
		t.Fatal("Normalize must copy the default page-size options")
	}
}

func TestEndpointPaths(t *testing.T) {
	e := Endpoints{Base: "/users"}
	if e.CreatePath() != "/users" {
		t.Errorf("Expected create fallback to base, got %q", e.CreatePath())
	}
	if e.DetailPath("7") != "/users/7" {
		t.Errorf("Expected base/:id fallback, got %q", e.DetailPath("7"))
	}

	e = Endpoints{
		Base:       "/users/",
		Create:     "/users/new",
		UpdateByID: "/users/:id/edit",
		DeleteByID: "/archive/users",
	}
	if e.CreatePath() != "/users/new" {
		t.Errorf("Unexpected create path: %q", e.CreatePath())
	}
	if e.UpdatePath("7") != "/users/7/edit" {
		t.Errorf("Expected placeholder substitution, got %q", e.UpdatePath("7"))
	}
	if e.DeletePath("7") != "/archive/users/7" {
		t.Errorf("Expected id appended to placeholder-free template, got %q", e.DeletePath("7"))
	}
	if e.DetailPath("7") != "/users/7" {
		t.Errorf("Expected trailing slash trimmed, got %q", e.DetailPath("7"))
	}
}

func TestColumnID(t *testing.T) {
	cases := []struct {
		column ColumnDescriptor
		want   string
	}{
		{ColumnDescriptor{ID: "explicit", AccessorKey: "key", Header: "Header"}, "explicit"},
		{ColumnDescriptor{AccessorKey: "created_at", Header: "Created"}, "created_at"},
		{ColumnDescriptor{Header: "Full Name"}, "full-name"},
	}
	for _, c := range cases {
		if got := c.column.ColumnID(); got != c.want {
			t.Errorf("ColumnID() = %q, want %q", got, c.want)
		}
	}
}

func TestFieldDisplayLabel(t *testing.T) {
	if got := (FieldDescriptor{Key: "created_at", Label: "Created"}).DisplayLabel(); got != "Created" {
		t.Errorf("Expected explicit label, got %q", got)
	}
	if got := (FieldDescriptor{Key: "created_at"}).DisplayLabel(); got != "Created At" {
		t.Errorf("Expected humanized key, got %q", got)
	}
	if got := (FieldDescriptor{Key: "createdAt"}).DisplayLabel(); got != "Created At" {
		t.Errorf("Expected camelCase split, got %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Insurance Policy":  "insurance-policy",
		"  Spaced  Out  ":   "spaced-out",
		"Already-Sluggy":    "already-sluggy",
		"weird__под__score": "weird-score",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldAndFilterByKey(t *testing.T) {
	config := EntityConfiguration{
		Name:    "User",
		Fields:  []FieldDescriptor{{Key: "name"}, {Key: "email"}},
		Filters: []FilterDescriptor{{Key: "status"}},
	}

	if f := config.FieldByKey("email"); f == nil || f.Key != "email" {
		t.Errorf("Expected email field, got %+v", f)
	}
	if config.FieldByKey("missing") != nil {
		t.Error("Expected nil for unknown field key")
	}
	if f := config.FilterByKey("status"); f == nil {
		t.Error("Expected status filter")
	}
}
