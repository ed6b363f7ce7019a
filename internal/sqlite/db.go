package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/nmer1/Project-Tracking-App/internal/tracker"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

type column struct {
	name string
	decl string
}

type table struct {
	name    string
	columns []column
}

var categorySlugger = strings.NewReplacer("/", "", " ", "_")

// categoryColumn maps a task category to its projects-table column, e.g.
// "Wall Tiles" -> wall_tiles_progress, "S/S" -> ss_progress.
func categoryColumn(cat tracker.Category) string {
	return categorySlugger.Replace(strings.ToLower(string(cat))) + "_progress"
}

func projectTable() table {
	cols := []column{
		{"id", "INTEGER PRIMARY KEY"},
		{"name", "TEXT NOT NULL DEFAULT ''"},
		{"notes", "TEXT NOT NULL DEFAULT ''"},
	}
	for _, cat := range tracker.Categories {
		cols = append(cols, column{categoryColumn(cat), "REAL NOT NULL DEFAULT 0"})
	}
	cols = append(cols, column{"overall_progress", "REAL NOT NULL DEFAULT 0"})
	return table{name: "projects", columns: cols}
}

var schema = []table{
	projectTable(),
	{name: "tasks", columns: []column{
		{"id", "INTEGER PRIMARY KEY"},
		{"project_id", "INTEGER NOT NULL DEFAULT 0"},
		{"name", "TEXT NOT NULL DEFAULT ''"},
		{"category", "TEXT NOT NULL DEFAULT ''"},
		{"duration", "REAL NOT NULL DEFAULT 0"},
		{"weight", "REAL NOT NULL DEFAULT 0"},
		{"progress", "REAL NOT NULL DEFAULT 0"},
		{"parent_task_id", "INTEGER"},
		{"pending_items", "TEXT NOT NULL DEFAULT ''"},
	}},
	{name: "pending_work", columns: []column{
		{"id", "INTEGER PRIMARY KEY"},
		{"task_id", "INTEGER NOT NULL DEFAULT 0"},
		{"project_id", "INTEGER NOT NULL DEFAULT 0"},
		{"description", "TEXT NOT NULL DEFAULT ''"},
		{"status", "TEXT NOT NULL DEFAULT ''"},
		{"due_date", "TEXT NOT NULL DEFAULT ''"},
	}},
	{name: "orders", columns: []column{
		{"id", "INTEGER PRIMARY KEY"},
		{"project_id", "INTEGER NOT NULL DEFAULT 0"},
		{"company", "TEXT NOT NULL DEFAULT ''"},
		{"item_category", "TEXT NOT NULL DEFAULT ''"},
		{"order_status", "TEXT NOT NULL DEFAULT ''"},
		{"lpo_status", "TEXT NOT NULL DEFAULT ''"},
		{"invoice_status", "TEXT NOT NULL DEFAULT ''"},
		{"invoice_copy_path", "TEXT NOT NULL DEFAULT ''"},
		{"missing_items", "TEXT NOT NULL DEFAULT ''"},
		{"delivery_date", "TEXT NOT NULL DEFAULT ''"},
		{"installation_date", "TEXT NOT NULL DEFAULT ''"},
	}},
}

// EnsureSchema creates missing tables and heals missing columns so snapshots
// written by older versions keep loading. Columns added here pick up their
// declared default (0 for numeric fields, empty string for text). Extra
// columns from newer or foreign writers are left alone.
func (db *DB) EnsureSchema() error {
	for _, tbl := range schema {
		decls := make([]string, 0, len(tbl.columns))
		for _, col := range tbl.columns {
			decls = append(decls, col.name+" "+col.decl)
		}
		create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tbl.name, strings.Join(decls, ", "))
		if _, err := db.Exec(create); err != nil {
			return fmt.Errorf("failed to create table %s: %w", tbl.name, err)
		}

		existing, err := db.tableColumns(tbl.name)
		if err != nil {
			return err
		}
		for _, col := range tbl.columns {
			if existing[col.name] {
				continue
			}
			alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tbl.name, col.name, col.decl)
			if _, err := db.Exec(alter); err != nil {
				return fmt.Errorf("failed to add column %s.%s: %w", tbl.name, col.name, err)
			}
		}
	}
	return nil
}

func (db *DB) tableColumns(name string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", name))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", name, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info for %s: %w", name, err)
		}
		cols[colName] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table info for %s: %w", name, err)
	}
	return cols, nil
}
