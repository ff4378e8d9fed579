// Package storage persists extraction results in SQLite so call-graph queries
// can be answered without re-parsing the project.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// batchSize bounds the rows per INSERT so statements stay under SQLite's
// bound-parameter limit.
const batchSize = 500

// Store reads and writes extraction results.
type Store struct {
	db     *sql.DB
	ownsDB bool // true if we opened the connection, false if shared
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, ownsDB: true}, nil
}

// NewStoreWithDB creates a Store on an existing connection. The caller owns
// the connection and must have created the schema.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db, ownsDB: false}
}

// Close closes the database connection if owned by this store.
func (s *Store) Close() error {
	if !s.ownsDB || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes every unit in a single transaction. Rows previously stored for
// the same files are replaced; other files are left untouched.
func (s *Store) Save(ctx context.Context, runID string, units []*extraction.ParseUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	now := time.Now().UTC().Format(time.RFC3339)
	for _, u := range units {
		if err := clearFile(ctx, tx, u.Path); err != nil {
			return err
		}
		if err := writeUnit(ctx, tx, runID, now, u); err != nil {
			return fmt.Errorf("failed to write %s: %w", u.Path, err)
		}
	}

	if _, err := sq.Insert("metadata").
		Columns("key", "value", "updated_at").
		Values("last_run", runID, now).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// clearFile removes a file's rows, children first.
func clearFile(ctx context.Context, tx *sql.Tx, path string) error {
	for _, table := range []string{"documents", "calls", "inheritance", "imports", "symbols", "files"} {
		if _, err := sq.Delete(table).Where(sq.Eq{"file_path": path}).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to clear existing data (%s): %w", table, err)
		}
	}
	return nil
}

func writeUnit(ctx context.Context, tx *sql.Tx, runID, now string, u *extraction.ParseUnit) error {
	if _, err := sq.Insert("files").
		Columns("file_path", "language", "namespace", "line_count", "unsupported",
			"unresolved", "low_confidence", "run_id", "indexed_at").
		Values(u.Path, string(u.Language), u.Namespace, u.Lines, len(u.Diagnostics.Unsupported),
			u.Diagnostics.Unresolved, u.Diagnostics.LowConfidence, runID, now).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to write file row: %w", err)
	}

	symbols := make([][]any, 0, len(u.Symbols))
	for _, sym := range u.Symbols {
		symbols = append(symbols, []any{
			u.Path, sym.QualifiedName, sym.Name, string(sym.Kind), string(sym.Visibility),
			sym.Signature, sym.DocComment, sym.Container, sym.Span.StartLine, sym.Span.EndLine, sym.Score,
		})
	}
	if err := insertBatched(ctx, tx, "symbols", []string{
		"file_path", "qualified_name", "name", "kind", "visibility",
		"signature", "doc_comment", "container", "start_line", "end_line", "score",
	}, symbols, ""); err != nil {
		return err
	}

	imports := make([][]any, 0, len(u.Imports))
	for i, imp := range u.Imports {
		imports = append(imports, []any{
			u.Path, i, imp.ImportedPath, imp.LocalAlias, imp.ImportedSymbol,
			boolToInt(imp.IsRelative), boolToInt(imp.IsWildcard),
		})
	}
	if err := insertBatched(ctx, tx, "imports", []string{
		"file_path", "position", "imported_path", "local_alias", "imported_symbol", "is_relative", "is_wildcard",
	}, imports, ""); err != nil {
		return err
	}

	edges := make([][]any, 0, len(u.Inheritance))
	for _, e := range u.Inheritance {
		edges = append(edges, []any{u.Path, e.Child, e.Parent, string(e.Kind)})
	}
	if err := insertBatched(ctx, tx, "inheritance", []string{
		"file_path", "child", "parent", "kind",
	}, edges, "OR IGNORE"); err != nil {
		return err
	}

	calls := make([][]any, 0, len(u.Calls))
	for i, c := range u.Calls {
		calls = append(calls, []any{
			u.Path, i, c.Caller, c.CalleeExpression, c.ResolvedCallee, string(c.CallType),
			c.ArgumentCount, string(c.Confidence), c.Span.StartLine, c.Span.EndLine,
		})
	}
	return insertBatched(ctx, tx, "calls", []string{
		"file_path", "position", "caller", "callee_expression", "resolved_callee", "call_type",
		"argument_count", "confidence", "start_line", "end_line",
	}, calls, "")
}

func insertBatched(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any, options string) error {
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		ins := sq.Insert(table).Columns(columns...)
		if options != "" {
			ins = ins.Options(options)
		}
		for _, row := range rows[start:end] {
			ins = ins.Values(row...)
		}
		if _, err := ins.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to write %s: %w", table, err)
		}
	}
	return nil
}

// SaveDocument stores the synthesized document for a file already saved.
func (s *Store) SaveDocument(ctx context.Context, doc DocumentRecord) error {
	if doc.GeneratedAt == "" {
		doc.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := sq.Insert("documents").
		Columns("file_path", "strategy", "fallback", "content", "generated_at").
		Values(doc.FilePath, doc.Strategy, doc.Fallback, doc.Content, doc.GeneratedAt).
		Suffix("ON CONFLICT(file_path) DO UPDATE SET strategy = excluded.strategy, fallback = excluded.fallback, content = excluded.content, generated_at = excluded.generated_at").
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save document for %s: %w", doc.FilePath, err)
	}
	return nil
}

// Document returns the stored document for a file.
func (s *Store) Document(ctx context.Context, filePath string) (*DocumentRecord, error) {
	d := &DocumentRecord{}
	err := sq.Select("file_path", "strategy", "fallback", "content", "generated_at").
		From("documents").
		Where(sq.Eq{"file_path": filePath}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&d.FilePath, &d.Strategy, &d.Fallback, &d.Content, &d.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document for %s: %w", filePath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return d, nil
}

var callColumns = []string{
	"file_path", "caller", "callee_expression", "resolved_callee", "call_type",
	"argument_count", "confidence", "start_line", "end_line",
}

// Callers returns the calls whose resolved target is qualifiedName.
func (s *Store) Callers(ctx context.Context, qualifiedName string) ([]CallRecord, error) {
	return s.queryCalls(ctx, sq.Eq{"resolved_callee": qualifiedName})
}

// Callees returns the calls made from inside qualifiedName, resolved or not.
func (s *Store) Callees(ctx context.Context, qualifiedName string) ([]CallRecord, error) {
	return s.queryCalls(ctx, sq.Eq{"caller": qualifiedName})
}

// AllCalls returns every stored call.
func (s *Store) AllCalls(ctx context.Context) ([]CallRecord, error) {
	return s.queryCalls(ctx, nil)
}

func (s *Store) queryCalls(ctx context.Context, where sq.Sqlizer) ([]CallRecord, error) {
	q := sq.Select(callColumns...).From("calls").OrderBy("file_path", "position")
	if where != nil {
		q = q.Where(where)
	}
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	calls := []CallRecord{}
	for rows.Next() {
		var c CallRecord
		var resolved sql.NullString
		if err := rows.Scan(&c.FilePath, &c.Caller, &c.CalleeExpression, &resolved, &c.CallType,
			&c.ArgumentCount, &c.Confidence, &c.StartLine, &c.EndLine); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		if resolved.Valid {
			c.ResolvedCallee = &resolved.String
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calls: %w", err)
	}
	return calls, nil
}

// Symbols returns the declarations of one file in source order.
func (s *Store) Symbols(ctx context.Context, filePath string) ([]SymbolRecord, error) {
	rows, err := sq.Select(
		"file_path", "qualified_name", "name", "kind", "visibility",
		"signature", "doc_comment", "container", "start_line", "end_line", "score",
	).
		From("symbols").
		Where(sq.Eq{"file_path": filePath}).
		OrderBy("start_line", "qualified_name").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	symbols := []SymbolRecord{}
	for rows.Next() {
		var sym SymbolRecord
		var doc sql.NullString
		if err := rows.Scan(&sym.FilePath, &sym.QualifiedName, &sym.Name, &sym.Kind, &sym.Visibility,
			&sym.Signature, &doc, &sym.Container, &sym.StartLine, &sym.EndLine, &sym.Score); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		if doc.Valid {
			sym.DocComment = &doc.String
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}
	return symbols, nil
}

// Parents returns the stored parent edges of a type.
func (s *Store) Parents(ctx context.Context, child string) ([]InheritanceRecord, error) {
	return s.queryInheritance(ctx, sq.Eq{"child": child})
}

// Children returns the stored edges naming parent as the parent.
func (s *Store) Children(ctx context.Context, parent string) ([]InheritanceRecord, error) {
	return s.queryInheritance(ctx, sq.Eq{"parent": parent})
}

func (s *Store) queryInheritance(ctx context.Context, where sq.Sqlizer) ([]InheritanceRecord, error) {
	rows, err := sq.Select("file_path", "child", "parent", "kind").
		From("inheritance").
		Where(where).
		OrderBy("child", "parent").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query inheritance: %w", err)
	}
	defer rows.Close()

	edges := []InheritanceRecord{}
	for rows.Next() {
		var e InheritanceRecord
		if err := rows.Scan(&e.FilePath, &e.Child, &e.Parent, &e.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan inheritance: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inheritance: %w", err)
	}
	return edges, nil
}

// Files returns every stored file sorted by path.
func (s *Store) Files(ctx context.Context) ([]FileRecord, error) {
	rows, err := sq.Select("file_path", "language", "namespace", "line_count", "unsupported",
		"unresolved", "low_confidence", "run_id", "indexed_at").
		From("files").
		OrderBy("file_path").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := []FileRecord{}
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.FilePath, &f.Language, &f.Namespace, &f.LineCount, &f.Unsupported,
			&f.Unresolved, &f.LowConfidence, &f.RunID, &f.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

// LastRun returns the ID of the most recent Save.
func (s *Store) LastRun(ctx context.Context) (string, error) {
	var runID string
	err := sq.Select("value").
		From("metadata").
		Where(sq.Eq{"key": "last_run"}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("last run: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last run: %w", err)
	}
	return runID, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
