// Package store persists executed calls, loaded specifications and
// user-created mapping tables in SQLite.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CallResult is one persisted request/response pair.
type CallResult struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UserPrompt      string    `json:"user_prompt"`
	Endpoint        string    `json:"endpoint"`
	Method          string    `json:"method"`
	URL             string    `json:"url"`
	RequestParams   string    `json:"request_params"`   // JSON object of name -> raw value
	StatusCode      int       `json:"status_code"`
	ResponseHeaders string    `json:"response_headers"` // JSON object
	ResponseBody    string    `json:"response_body"`
	DurationMS      int64     `json:"duration_ms"`
	SchemaUsed      string    `json:"schema_used"`
}

// SpecRecord is one loaded specification document.
type SpecRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
}

// Store wraps the SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the tool's
// own tables. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: &quietLogger{}})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&CallResult{}, &SpecRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database ready", "path", path)
	return &Store{db: db}, nil
}

// SaveResult persists one executed call and returns its id.
func (s *Store) SaveResult(r *CallResult) (uint, error) {
	if err := s.db.Create(r).Error; err != nil {
		return 0, fmt.Errorf("store call result: %w", err)
	}
	slog.Info("call result stored", "id", r.ID, "endpoint", r.Endpoint, "status", r.StatusCode)
	return r.ID, nil
}

// SaveSpec persists a raw specification document.
func (s *Store) SaveSpec(name, content string) (uint, error) {
	rec := SpecRecord{Name: name, Content: content}
	if err := s.db.Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("store spec: %w", err)
	}
	return rec.ID, nil
}

// RecentResults returns the newest results, most recent first.
func (s *Store) RecentResults(limit int) ([]CallResult, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []CallResult
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query recent results: %w", err)
	}
	return out, nil
}

// Result returns one stored result by id.
func (s *Store) Result(id uint) (*CallResult, error) {
	var r CallResult
	if err := s.db.First(&r, id).Error; err != nil {
		return nil, fmt.Errorf("result %d: %w", id, err)
	}
	return &r, nil
}

var createTableRe = regexp.MustCompile(`(?is)^\s*create\s+table\s+(?:if\s+not\s+exists\s+)?["` + "`" + `]?(\w+)`)

// CreateTableFromSQL executes a single hand-written CREATE TABLE
// statement and returns the table name. Anything other than one CREATE
// TABLE is rejected before execution.
func (s *Store) CreateTableFromSQL(ddl string) (string, error) {
	stmt := strings.TrimSpace(ddl)
	if n := strings.Count(stmt, ";"); n > 1 || (n == 1 && !strings.HasSuffix(stmt, ";")) {
		return "", fmt.Errorf("expected a single CREATE TABLE statement")
	}
	m := createTableRe.FindStringSubmatch(stmt)
	if m == nil {
		return "", fmt.Errorf("expected a CREATE TABLE statement")
	}
	if err := s.db.Exec(stmt).Error; err != nil {
		return "", fmt.Errorf("create table: %w", err)
	}
	slog.Info("user table created", "table", m[1])
	return m[1], nil
}

// InsertRow inserts one mapped row (column -> value) into a user table.
func (s *Store) InsertRow(table string, row map[string]any) error {
	if len(row) == 0 {
		return fmt.Errorf("row is empty")
	}
	if err := s.db.Table(table).Create(row).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// TableDDL returns the stored CREATE TABLE statement for a user table.
func (s *Store) TableDDL(table string) (string, error) {
	var ddl string
	err := s.db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl).Error
	if err != nil {
		return "", fmt.Errorf("read table ddl: %w", err)
	}
	if ddl == "" {
		return "", fmt.Errorf("table %s not found", table)
	}
	return ddl, nil
}

// MarshalJSONField renders a value as a JSON string column, empty on nil.
func MarshalJSONField(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
