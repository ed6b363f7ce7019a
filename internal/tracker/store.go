package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Store owns the four in-memory collections and is the single source of
// truth for a session. Every mutation is applied in memory, re-aggregated
// where tasks or pending work changed, then committed through the gateway as
// one snapshot. The mutex serializes commands end-to-end so the transport
// can serve concurrent requests while the engine stays command-by-command.
type Store struct {
	mu      sync.Mutex
	gateway Gateway
	logger  *slog.Logger

	projects []Project
	tasks    []Task
	pending  []PendingWork
	orders   []Order
}

// NewStore creates an empty store backed by the given gateway.
func NewStore(gateway Gateway, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{gateway: gateway, logger: logger}
}

// Load replaces the in-memory state with the persisted snapshot. Called once
// at process start.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.gateway.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = snap.Projects
	s.tasks = snap.Tasks
	s.pending = snap.PendingWork
	s.orders = snap.Orders

	// Older snapshots may lack sub-progress entries for categories added
	// since they were written.
	for i := range s.projects {
		if s.projects[i].SubProgress == nil {
			s.projects[i].SubProgress = make(map[Category]float64, len(Categories))
		}
		for _, cat := range Categories {
			if _, ok := s.projects[i].SubProgress[cat]; !ok {
				s.projects[i].SubProgress[cat] = 0
			}
		}
	}
	s.healParentRefsLocked()
	return nil
}

// healParentRefsLocked clears parent references the write path would never
// accept: missing parents, cross-project parents, self-references, cycles.
// A foreign or hand-edited snapshot can carry any of them, and the ancestor
// walk in checkParentLocked assumes they cannot exist.
func (s *Store) healParentRefsLocked() {
	byID := make(map[int64]*Task, len(s.tasks))
	for i := range s.tasks {
		byID[s.tasks[i].ID] = &s.tasks[i]
	}

	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ParentTaskID == nil {
			continue
		}
		parent, ok := byID[*t.ParentTaskID]
		if !ok || parent.ID == t.ID || parent.ProjectID != t.ProjectID {
			s.logger.Warn("clearing invalid parent reference",
				"task_id", t.ID, "parent_task_id", *t.ParentTaskID)
			t.ParentTaskID = nil
		}
	}

	// Break cycles: a task whose ancestor chain revisits a node is
	// detached from its parent.
	for i := range s.tasks {
		t := &s.tasks[i]
		seen := map[int64]bool{t.ID: true}
		for cur := t; cur.ParentTaskID != nil; {
			next := byID[*cur.ParentTaskID]
			if seen[next.ID] {
				s.logger.Warn("clearing cyclic parent reference",
					"task_id", t.ID, "parent_task_id", *t.ParentTaskID)
				t.ParentTaskID = nil
				break
			}
			seen[next.ID] = true
			cur = next
		}
	}
}

// commit persists the whole store. On failure the in-memory change stands;
// the error is the mutating command's outcome so the caller knows the state
// is not yet durable.
func (s *Store) commit(ctx context.Context) error {
	snap := &Snapshot{
		Projects:    s.projects,
		Tasks:       s.tasks,
		PendingWork: s.pending,
		Orders:      s.orders,
	}
	if err := s.gateway.Save(ctx, snap); err != nil {
		s.logger.Error("snapshot commit failed", "error", err)
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// ---- identifier allocation ----
//
// IDs are 1 for an empty collection, otherwise max+1 at call time. IDs below
// the current max may be reissued after the max row is deleted; that is
// accepted behavior, not a bug.

func (s *Store) nextProjectID() int64 {
	var max int64
	for i := range s.projects {
		if s.projects[i].ID > max {
			max = s.projects[i].ID
		}
	}
	return max + 1
}

func (s *Store) nextTaskID() int64 {
	var max int64
	for i := range s.tasks {
		if s.tasks[i].ID > max {
			max = s.tasks[i].ID
		}
	}
	return max + 1
}

func (s *Store) nextPendingID() int64 {
	var max int64
	for i := range s.pending {
		if s.pending[i].ID > max {
			max = s.pending[i].ID
		}
	}
	return max + 1
}

func (s *Store) nextOrderID() int64 {
	var max int64
	for i := range s.orders {
		if s.orders[i].ID > max {
			max = s.orders[i].ID
		}
	}
	return max + 1
}

// ---- locked lookups ----

func (s *Store) projectLocked(id int64) *Project {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return &s.projects[i]
		}
	}
	return nil
}

func (s *Store) taskLocked(id int64) *Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

func (s *Store) pendingLocked(id int64) *PendingWork {
	for i := range s.pending {
		if s.pending[i].ID == id {
			return &s.pending[i]
		}
	}
	return nil
}

func (s *Store) orderLocked(id int64) *Order {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i]
		}
	}
	return nil
}

func cloneProject(p Project) Project {
	sub := make(map[Category]float64, len(p.SubProgress))
	for cat, v := range p.SubProgress {
		sub[cat] = v
	}
	p.SubProgress = sub
	return p
}

// ---- projects ----

// AddProject creates a project with all progress figures zeroed.
func (s *Store) AddProject(ctx context.Context, name, notes string) (Project, error) {
	if strings.TrimSpace(name) == "" {
		return Project{}, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := NewProject(s.nextProjectID(), name, notes)
	s.projects = append(s.projects, p)
	return cloneProject(p), s.commit(ctx)
}

// UpdateProject sets the project's name and notes. Progress fields are owned
// by the aggregator and are not touched here.
func (s *Store) UpdateProject(ctx context.Context, id int64, name, notes string) (Project, error) {
	if strings.TrimSpace(name) == "" {
		return Project{}, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.projectLocked(id)
	if p == nil {
		return Project{}, ErrProjectNotFound
	}
	p.Name = name
	p.Notes = notes
	return cloneProject(*p), s.commit(ctx)
}

// ProjectByID returns a copy of the project.
func (s *Store) ProjectByID(id int64) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.projectLocked(id)
	if p == nil {
		return Project{}, ErrProjectNotFound
	}
	return cloneProject(*p), nil
}

// Projects returns copies of all projects in insertion order.
func (s *Store) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, cloneProject(p))
	}
	return out
}

// ---- tasks ----

// TaskInput carries the caller-editable task fields.
type TaskInput struct {
	ProjectID    int64    `json:"project_id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Duration     float64  `json:"duration"`
	Weight       float64  `json:"weight"`
	Progress     float64  `json:"progress"`
	ParentTaskID *int64   `json:"parent_task_id,omitempty"`
	PendingItems string   `json:"pending_items"`
}

func (s *Store) validateTaskInput(in TaskInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: task name is required", ErrValidation)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unrecognized category %q", ErrValidation, in.Category)
	}
	if err := validatePercent("progress", in.Progress); err != nil {
		return err
	}
	if err := validateNonNegative("duration", in.Duration); err != nil {
		return err
	}
	return validateNonNegative("weight", in.Weight)
}

// checkParentLocked validates a parent reference: the parent must exist,
// belong to the same project, and must not make the task its own ancestor.
func (s *Store) checkParentLocked(taskID, projectID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if taskID != 0 && *parentID == taskID {
		return fmt.Errorf("%w: task cannot be its own parent", ErrValidation)
	}
	parent := s.taskLocked(*parentID)
	if parent == nil {
		return fmt.Errorf("%w: parent task %d does not exist", ErrReferentialViolation, *parentID)
	}
	if parent.ProjectID != projectID {
		return fmt.Errorf("%w: parent task belongs to another project", ErrValidation)
	}
	// Walk up from the parent; reaching taskID means a cycle.
	for cur := parent; cur != nil && cur.ParentTaskID != nil; cur = s.taskLocked(*cur.ParentTaskID) {
		if taskID != 0 && *cur.ParentTaskID == taskID {
			return fmt.Errorf("%w: parent assignment creates a cycle", ErrValidation)
		}
	}
	return nil
}

// AddTask creates a task and re-aggregates its project.
func (s *Store) AddTask(ctx context.Context, in TaskInput) (Task, error) {
	if err := s.validateTaskInput(in); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectLocked(in.ProjectID) == nil {
		return Task{}, fmt.Errorf("%w: project %d does not exist", ErrReferentialViolation, in.ProjectID)
	}
	if err := s.checkParentLocked(0, in.ProjectID, in.ParentTaskID); err != nil {
		return Task{}, err
	}

	t := Task{
		ID:           s.nextTaskID(),
		ProjectID:    in.ProjectID,
		Name:         in.Name,
		Category:     in.Category,
		Duration:     in.Duration,
		Weight:       in.Weight,
		Progress:     in.Progress,
		ParentTaskID: in.ParentTaskID,
		PendingItems: in.PendingItems,
	}
	s.tasks = append(s.tasks, t)
	s.recomputeProjectLocked(in.ProjectID)
	return t, s.commit(ctx)
}

// UpdateTask replaces the editable fields of a task. The owning project
// cannot be changed. The project is re-aggregated afterwards.
func (s *Store) UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error) {
	if err := s.validateTaskInput(in); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.taskLocked(id)
	if t == nil {
		return Task{}, ErrTaskNotFound
	}
	if err := s.checkParentLocked(id, t.ProjectID, in.ParentTaskID); err != nil {
		return Task{}, err
	}

	t.Name = in.Name
	t.Category = in.Category
	t.Duration = in.Duration
	t.Weight = in.Weight
	t.Progress = in.Progress
	t.ParentTaskID = in.ParentTaskID
	t.PendingItems = in.PendingItems
	s.recomputeProjectLocked(t.ProjectID)
	return *t, s.commit(ctx)
}

// UpdateTaskProgress sets a task's progress directly and re-aggregates.
func (s *Store) UpdateTaskProgress(ctx context.Context, id int64, progress float64) (Task, error) {
	if err := validatePercent("progress", progress); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.taskLocked(id)
	if t == nil {
		return Task{}, ErrTaskNotFound
	}
	t.Progress = progress
	s.recomputeProjectLocked(t.ProjectID)
	return *t, s.commit(ctx)
}

// UpdateTaskPendingItems sets the free-text pending summary on a task.
func (s *Store) UpdateTaskPendingItems(ctx context.Context, id int64, pendingItems string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.taskLocked(id)
	if t == nil {
		return Task{}, ErrTaskNotFound
	}
	t.PendingItems = pendingItems
	s.recomputeProjectLocked(t.ProjectID)
	return *t, s.commit(ctx)
}

// TaskByID returns a copy of the task.
func (s *Store) TaskByID(id int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.taskLocked(id)
	if t == nil {
		return Task{}, ErrTaskNotFound
	}
	return *t, nil
}

// TasksByProject returns the project's tasks in insertion order.
func (s *Store) TasksByProject(projectID int64) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// ---- pending work ----

// PendingWorkInput carries an upsert. ID zero inserts a new row; a non-zero
// ID updates that row in place (the "currently editing" key held by the UI).
type PendingWorkInput struct {
	ID          int64         `json:"id"`
	TaskID      int64         `json:"task_id"`
	Description string        `json:"description"`
	Status      PendingStatus `json:"status"`
	DueDate     string        `json:"due_date"`
}

// UpsertPendingWork inserts or updates a pending-work item. The redundant
// project id is always derived from the parent task, never trusted from the
// caller. The owning project is re-aggregated afterwards.
func (s *Store) UpsertPendingWork(ctx context.Context, in PendingWorkInput) (PendingWork, error) {
	if strings.TrimSpace(in.Description) == "" {
		return PendingWork{}, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return PendingWork{}, fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if !in.Status.Valid() {
		return PendingWork{}, fmt.Errorf("%w: unrecognized status %q", ErrValidation, in.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.taskLocked(in.TaskID)
	if task == nil {
		return PendingWork{}, fmt.Errorf("%w: task %d does not exist", ErrReferentialViolation, in.TaskID)
	}

	var row *PendingWork
	if in.ID == 0 {
		s.pending = append(s.pending, PendingWork{
			ID:          s.nextPendingID(),
			TaskID:      task.ID,
			ProjectID:   task.ProjectID,
			Description: in.Description,
			Status:      in.Status,
			DueDate:     in.DueDate,
		})
		row = &s.pending[len(s.pending)-1]
	} else {
		row = s.pendingLocked(in.ID)
		if row == nil || row.TaskID != in.TaskID {
			return PendingWork{}, ErrPendingWorkNotFound
		}
		row.Description = in.Description
		row.Status = in.Status
		row.DueDate = in.DueDate
	}

	s.recomputeProjectLocked(task.ProjectID)
	return *row, s.commit(ctx)
}

// PendingWorkByTask returns the task's pending-work items.
func (s *Store) PendingWorkByTask(taskID int64) []PendingWork {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PendingWork
	for _, pw := range s.pending {
		if pw.TaskID == taskID {
			out = append(out, pw)
		}
	}
	return out
}

// PendingWorkByProject returns every pending-work item under a project.
func (s *Store) PendingWorkByProject(projectID int64) []PendingWork {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PendingWork
	for _, pw := range s.pending {
		if pw.ProjectID == projectID {
			out = append(out, pw)
		}
	}
	return out
}

// ---- orders ----

// OrderInput carries the caller-editable order fields.
type OrderInput struct {
	ProjectID        int64         `json:"project_id"`
	Company          string        `json:"company"`
	ItemCategory     string        `json:"item_category"`
	OrderStatus      OrderStatus   `json:"order_status"`
	LPOStatus        LPOStatus     `json:"lpo_status"`
	InvoiceStatus    InvoiceStatus `json:"invoice_status"`
	MissingItems     string        `json:"missing_items"`
	DeliveryDate     string        `json:"delivery_date"`
	InstallationDate string        `json:"installation_date"`
}

// AddOrder creates an order. Orders never feed aggregation.
func (s *Store) AddOrder(ctx context.Context, in OrderInput) (Order, error) {
	if !in.OrderStatus.Valid() {
		return Order{}, fmt.Errorf("%w: unrecognized order status %q", ErrValidation, in.OrderStatus)
	}
	if !in.LPOStatus.Valid() {
		return Order{}, fmt.Errorf("%w: unrecognized LPO status %q", ErrValidation, in.LPOStatus)
	}
	if !in.InvoiceStatus.Valid() {
		return Order{}, fmt.Errorf("%w: unrecognized invoice status %q", ErrValidation, in.InvoiceStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectLocked(in.ProjectID) == nil {
		return Order{}, fmt.Errorf("%w: project %d does not exist", ErrReferentialViolation, in.ProjectID)
	}

	o := Order{
		ID:               s.nextOrderID(),
		ProjectID:        in.ProjectID,
		Company:          in.Company,
		ItemCategory:     in.ItemCategory,
		OrderStatus:      in.OrderStatus,
		LPOStatus:        in.LPOStatus,
		InvoiceStatus:    in.InvoiceStatus,
		MissingItems:     in.MissingItems,
		DeliveryDate:     in.DeliveryDate,
		InstallationDate: in.InstallationDate,
	}
	s.orders = append(s.orders, o)
	return o, s.commit(ctx)
}

// SetOrderLPOStatus updates the LPO paperwork state of an order.
func (s *Store) SetOrderLPOStatus(ctx context.Context, id int64, status LPOStatus) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: unrecognized LPO status %q", ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.orderLocked(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	o.LPOStatus = status
	return *o, s.commit(ctx)
}

// SetOrderInvoiceStatus updates the invoicing state of an order.
func (s *Store) SetOrderInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: unrecognized invoice status %q", ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.orderLocked(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	o.InvoiceStatus = status
	return *o, s.commit(ctx)
}

// AttachInvoiceCopy records the opaque reference of an uploaded invoice copy.
func (s *Store) AttachInvoiceCopy(ctx context.Context, id int64, path string) (Order, error) {
	if strings.TrimSpace(path) == "" {
		return Order{}, fmt.Errorf("%w: invoice copy reference is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.orderLocked(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	o.InvoiceCopyPath = path
	return *o, s.commit(ctx)
}

// SetOrderCompany updates the supplier on an order.
func (s *Store) SetOrderCompany(ctx context.Context, id int64, company string) (Order, error) {
	if strings.TrimSpace(company) == "" {
		return Order{}, fmt.Errorf("%w: company is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.orderLocked(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	o.Company = company
	return *o, s.commit(ctx)
}

// UpdateOrderDetails sets the free-text follow-up fields of an order.
func (s *Store) UpdateOrderDetails(ctx context.Context, id int64, missingItems, deliveryDate, installationDate string) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.orderLocked(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	o.MissingItems = missingItems
	o.DeliveryDate = deliveryDate
	o.InstallationDate = installationDate
	return *o, s.commit(ctx)
}

// DeleteOrder removes one order. Nothing depends on orders, so there is no
// cascade and no re-aggregation.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orderLocked(id) == nil {
		return ErrOrderNotFound
	}
	var kept []Order
	for _, o := range s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	return s.commit(ctx)
}

// OrderByID returns a copy of the order.
func (s *Store) OrderByID(id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.orderLocked(id)
	if o == nil {
		return Order{}, ErrOrderNotFound
	}
	return *o, nil
}

// OrdersByProject returns the project's orders in insertion order.
func (s *Store) OrdersByProject(projectID int64) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Order
	for _, o := range s.orders {
		if o.ProjectID == projectID {
			out = append(out, o)
		}
	}
	return out
}
