package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nmer1/Project-Tracking-App/internal/metrics"
	"github.com/nmer1/Project-Tracking-App/internal/repository"
	"github.com/nmer1/Project-Tracking-App/internal/tracker"
)

// SnapshotStore implements repository.SnapshotGateway on SQLite. The entity
// store stays in memory; this gateway only reads the snapshot at startup and
// rewrites all four tables inside a single transaction on every commit, so
// an external reader never sees a half-updated snapshot.
type SnapshotStore struct {
	db     *DB
	logger *slog.Logger
}

// NewSnapshotStore creates a gateway over an opened database.
func NewSnapshotStore(db *DB, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{db: db, logger: logger}
}

// coalesce guards every scanned column: rows written before a column existed
// or by a foreign writer may hold NULL, which heals to the field's default.
func coalesce(col, def string) string {
	return "COALESCE(" + col + ", " + def + ")"
}

// Load reads the four tables. A table that cannot be read is logged and
// treated as empty rather than failing the whole load.
func (s *SnapshotStore) Load(ctx context.Context) (*tracker.Snapshot, error) {
	return &tracker.Snapshot{
		Projects:    s.loadProjects(ctx),
		Tasks:       s.loadTasks(ctx),
		PendingWork: s.loadPendingWork(ctx),
		Orders:      s.loadOrders(ctx),
	}, nil
}

func (s *SnapshotStore) loadProjects(ctx context.Context) []tracker.Project {
	cols := []string{coalesce("id", "0"), coalesce("name", "''"), coalesce("notes", "''")}
	for _, cat := range tracker.Categories {
		cols = append(cols, coalesce(categoryColumn(cat), "0"))
	}
	cols = append(cols, coalesce("overall_progress", "0"))

	query := "SELECT " + strings.Join(cols, ", ") + " FROM projects ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Warn("projects table unreadable, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var out []tracker.Project
	for rows.Next() {
		p := tracker.NewProject(0, "", "")
		sub := make([]float64, len(tracker.Categories))
		dest := []any{&p.ID, &p.Name, &p.Notes}
		for i := range sub {
			dest = append(dest, &sub[i])
		}
		dest = append(dest, &p.OverallProgress)
		if err := rows.Scan(dest...); err != nil {
			s.logger.Warn("projects table unreadable, starting empty", "error", err)
			return nil
		}
		for i, cat := range tracker.Categories {
			p.SubProgress[cat] = sub[i]
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("projects table unreadable, starting empty", "error", err)
		return nil
	}
	return out
}

func (s *SnapshotStore) loadTasks(ctx context.Context) []tracker.Task {
	query := "SELECT " + strings.Join([]string{
		coalesce("id", "0"),
		coalesce("project_id", "0"),
		coalesce("name", "''"),
		coalesce("category", "''"),
		coalesce("duration", "0"),
		coalesce("weight", "0"),
		coalesce("progress", "0"),
		"parent_task_id",
		coalesce("pending_items", "''"),
	}, ", ") + " FROM tasks ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Warn("tasks table unreadable, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var out []tracker.Task
	for rows.Next() {
		var t tracker.Task
		var parent *int64
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Category, &t.Duration,
			&t.Weight, &t.Progress, &parent, &t.PendingItems); err != nil {
			s.logger.Warn("tasks table unreadable, starting empty", "error", err)
			return nil
		}
		t.ParentTaskID = parent
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("tasks table unreadable, starting empty", "error", err)
		return nil
	}
	return out
}

func (s *SnapshotStore) loadPendingWork(ctx context.Context) []tracker.PendingWork {
	query := "SELECT " + strings.Join([]string{
		coalesce("id", "0"),
		coalesce("task_id", "0"),
		coalesce("project_id", "0"),
		coalesce("description", "''"),
		coalesce("status", "''"),
		coalesce("due_date", "''"),
	}, ", ") + " FROM pending_work ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Warn("pending_work table unreadable, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var out []tracker.PendingWork
	for rows.Next() {
		var pw tracker.PendingWork
		if err := rows.Scan(&pw.ID, &pw.TaskID, &pw.ProjectID, &pw.Description, &pw.Status, &pw.DueDate); err != nil {
			s.logger.Warn("pending_work table unreadable, starting empty", "error", err)
			return nil
		}
		out = append(out, pw)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("pending_work table unreadable, starting empty", "error", err)
		return nil
	}
	return out
}

func (s *SnapshotStore) loadOrders(ctx context.Context) []tracker.Order {
	query := "SELECT " + strings.Join([]string{
		coalesce("id", "0"),
		coalesce("project_id", "0"),
		coalesce("company", "''"),
		coalesce("item_category", "''"),
		coalesce("order_status", "''"),
		coalesce("lpo_status", "''"),
		coalesce("invoice_status", "''"),
		coalesce("invoice_copy_path", "''"),
		coalesce("missing_items", "''"),
		coalesce("delivery_date", "''"),
		coalesce("installation_date", "''"),
	}, ", ") + " FROM orders ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Warn("orders table unreadable, starting empty", "error", err)
		return nil
	}
	defer rows.Close()

	var out []tracker.Order
	for rows.Next() {
		var o tracker.Order
		if err := rows.Scan(&o.ID, &o.ProjectID, &o.Company, &o.ItemCategory, &o.OrderStatus,
			&o.LPOStatus, &o.InvoiceStatus, &o.InvoiceCopyPath, &o.MissingItems,
			&o.DeliveryDate, &o.InstallationDate); err != nil {
			s.logger.Warn("orders table unreadable, starting empty", "error", err)
			return nil
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("orders table unreadable, starting empty", "error", err)
		return nil
	}
	return out
}

// Save rewrites all four tables in one transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap *tracker.Snapshot) error {
	start := time.Now()
	err := s.save(ctx, snap)
	metrics.RecordSnapshotSave(time.Since(start), err == nil)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrSnapshotSave, err)
	}
	return nil
}

func (s *SnapshotStore) save(ctx context.Context, snap *tracker.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tbl := range []string{"projects", "tasks", "pending_work", "orders"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tbl); err != nil {
			return fmt.Errorf("clear %s: %w", tbl, err)
		}
	}

	projCols := []string{"id", "name", "notes"}
	for _, cat := range tracker.Categories {
		projCols = append(projCols, categoryColumn(cat))
	}
	projCols = append(projCols, "overall_progress")
	projInsert := insertStatement("projects", projCols)
	for _, p := range snap.Projects {
		args := []any{p.ID, p.Name, p.Notes}
		for _, cat := range tracker.Categories {
			args = append(args, p.SubProgress[cat])
		}
		args = append(args, p.OverallProgress)
		if _, err := tx.ExecContext(ctx, projInsert, args...); err != nil {
			return fmt.Errorf("insert project %d: %w", p.ID, err)
		}
	}

	taskInsert := insertStatement("tasks", []string{
		"id", "project_id", "name", "category", "duration", "weight",
		"progress", "parent_task_id", "pending_items",
	})
	for _, t := range snap.Tasks {
		if _, err := tx.ExecContext(ctx, taskInsert,
			t.ID, t.ProjectID, t.Name, t.Category, t.Duration, t.Weight,
			t.Progress, t.ParentTaskID, t.PendingItems); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}

	pendingInsert := insertStatement("pending_work", []string{
		"id", "task_id", "project_id", "description", "status", "due_date",
	})
	for _, pw := range snap.PendingWork {
		if _, err := tx.ExecContext(ctx, pendingInsert,
			pw.ID, pw.TaskID, pw.ProjectID, pw.Description, pw.Status, pw.DueDate); err != nil {
			return fmt.Errorf("insert pending work %d: %w", pw.ID, err)
		}
	}

	orderInsert := insertStatement("orders", []string{
		"id", "project_id", "company", "item_category", "order_status",
		"lpo_status", "invoice_status", "invoice_copy_path", "missing_items",
		"delivery_date", "installation_date",
	})
	for _, o := range snap.Orders {
		if _, err := tx.ExecContext(ctx, orderInsert,
			o.ID, o.ProjectID, o.Company, o.ItemCategory, o.OrderStatus,
			o.LPOStatus, o.InvoiceStatus, o.InvoiceCopyPath, o.MissingItems,
			o.DeliveryDate, o.InstallationDate); err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertStatement(tbl string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl, strings.Join(cols, ", "), placeholders)
}
