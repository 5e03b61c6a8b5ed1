package entserve

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "github.com/mattn/go-sqlite3"

	"github.com/entkit/entkit"
)

// =====================================
// Record Store
// =====================================

// StoreConfig holds the database settings of a record store.
type StoreConfig struct {
	// Driver is one of sqlite, postgres, mysql.
	Driver string

	// DSN is the connection string. For sqlite this is the file path, or
	// ":memory:" for an in-process database.
	DSN string

	// Debug logs every query through bundebug.
	Debug bool
}

// StoredRecord is the row shape of the generic records table: one JSON
// document per record, scoped by entity slug. The server stays
// schema-agnostic the same way the engine does.
type StoredRecord struct {
	bun.BaseModel `bun:"table:entity_records"`

	ID        string    `bun:"id,pk"`
	Slug      string    `bun:"slug"`
	Document  []byte    `bun:"document"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Store persists entity records as JSON documents. Listing loads the slug's
// rows and applies search, filters, sorting and paging in memory: the
// documents are opaque to SQL, and a development dataset is small.
type Store struct {
	db      *bun.DB
	entropy *ulid.MonotonicEntropy
}

// NewStore opens the database, installs the records table and returns the
// store.
func NewStore(ctx context.Context, config StoreConfig) (*Store, error) {
	db, err := openDB(config)
	if err != nil {
		return nil, err
	}
	if config.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	store := &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if _, err := db.NewCreateTable().Model((*StoredRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return store, nil
}

func openDB(config StoreConfig) (*bun.DB, error) {
	switch strings.ToLower(config.Driver) {
	case "sqlite", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", config.DSN)
		if err != nil {
			return nil, err
		}
		if strings.Contains(config.DSN, ":memory:") {
			// Every pooled connection would otherwise get its own database.
			sqlDB.SetMaxOpenConns(1)
		}
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres", "postgresql":
		sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(config.DSN)))
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	case "mysql":
		cfg, err := mysql.ParseDSN(config.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		sqlDB, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, mysqldialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", config.Driver)
	}
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewID issues a fresh ULID. IDs sort by creation time.
func (s *Store) NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Insert stores a new record and returns it with its id attached.
func (s *Store) Insert(ctx context.Context, slug string, record entkit.Record) (entkit.Record, error) {
	id, _ := record["id"].(string)
	if id == "" {
		id = s.NewID()
		record["id"] = id
	}
	document, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row := &StoredRecord{ID: id, Slug: slug, Document: document, CreatedAt: now, UpdatedAt: now}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// Get loads one record. The second result reports existence.
func (s *Store) Get(ctx context.Context, slug, id string) (entkit.Record, bool, error) {
	row := new(StoredRecord)
	err := s.db.NewSelect().Model(row).
		Where("slug = ?", slug).
		Where("id = ?", id).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	record, err := decodeDocument(row)
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// Update replaces a record's document. The second result reports existence.
func (s *Store) Update(ctx context.Context, slug, id string, record entkit.Record) (entkit.Record, bool, error) {
	record["id"] = id
	document, err := json.Marshal(record)
	if err != nil {
		return nil, false, err
	}

	res, err := s.db.NewUpdate().Model((*StoredRecord)(nil)).
		Set("document = ?", document).
		Set("updated_at = ?", time.Now().UTC()).
		Where("slug = ?", slug).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}
	affected, _ := res.RowsAffected()
	return record, affected > 0, nil
}

// Delete removes a record. The result reports whether a row existed.
func (s *Store) Delete(ctx context.Context, slug, id string) (bool, error) {
	res, err := s.db.NewDelete().Model((*StoredRecord)(nil)).
		Where("slug = ?", slug).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// ListQuery carries the decoded list parameters of one request.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder entkit.SortDirection
	Filters   map[string][]string

	// SearchKeys limits free-text search to the given document keys. Empty
	// searches every string value.
	SearchKeys []string
}

// List returns one page of the slug's records plus the filtered total.
func (s *Store) List(ctx context.Context, slug string, query ListQuery) ([]entkit.Record, int, error) {
	var rows []StoredRecord
	err := s.db.NewSelect().Model(&rows).
		Where("slug = ?", slug).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, 0, err
	}

	records := make([]entkit.Record, 0, len(rows))
	for i := range rows {
		record, err := decodeDocument(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	records = applySearch(records, query.Search, query.SearchKeys)
	records = applyFilters(records, query.Filters)
	applySort(records, query.SortBy, query.SortOrder)

	total := len(records)
	records = applyPage(records, query.Page, query.Limit)
	return records, total, nil
}

func decodeDocument(row *StoredRecord) (entkit.Record, error) {
	var record entkit.Record
	if err := json.Unmarshal(row.Document, &record); err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", row.Slug, row.ID, err)
	}
	record["id"] = row.ID
	return record, nil
}

// =====================================
// In-memory Query Evaluation
// =====================================

func applySearch(records []entkit.Record, search string, keys []string) []entkit.Record {
	if search == "" {
		return records
	}
	needle := strings.ToLower(search)
	matched := records[:0]
	for _, record := range records {
		if recordMatches(record, needle, keys) {
			matched = append(matched, record)
		}
	}
	return matched
}

func recordMatches(record entkit.Record, needle string, keys []string) bool {
	if len(keys) > 0 {
		for _, key := range keys {
			if value, ok := record[key].(string); ok && strings.Contains(strings.ToLower(value), needle) {
				return true
			}
		}
		return false
	}
	for _, value := range record {
		if text, ok := value.(string); ok && strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

func applyFilters(records []entkit.Record, filters map[string][]string) []entkit.Record {
	if len(filters) == 0 {
		return records
	}
	matched := records[:0]
	for _, record := range records {
		if filtersMatch(record, filters) {
			matched = append(matched, record)
		}
	}
	return matched
}

// filtersMatch requires every filter key to match; multiple values of one
// key form an any-of set.
func filtersMatch(record entkit.Record, filters map[string][]string) bool {
	for key, values := range filters {
		actual := fmt.Sprintf("%v", record[key])
		found := false
		for _, want := range values {
			if actual == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func applySort(records []entkit.Record, field string, direction entkit.SortDirection) {
	if field == "" {
		return
	}
	desc := direction == entkit.SortDesc
	sort.SliceStable(records, func(i, j int) bool {
		less := lessValue(records[i][field], records[j][field])
		if desc {
			return !less && !equalValue(records[i][field], records[j][field])
		}
		return less
	})
}

func lessValue(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func equalValue(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func applyPage(records []entkit.Record, page, limit int) []entkit.Record {
	if limit <= 0 {
		return records
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []entkit.Record{}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
