package tracker

import "context"

// Cascade rules: a project takes its tasks, orders, and pending work with
// it; a task takes its pending work, detaches its children, and
// re-aggregates the (former) owner. Deletes are unconditional, no
// tombstones.

// DeleteProject removes the project and every task, order, and pending-work
// row referencing it, then commits once so the removal is atomic from the
// caller's perspective.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectLocked(id) == nil {
		return ErrProjectNotFound
	}

	var projects []Project
	for _, p := range s.projects {
		if p.ID != id {
			projects = append(projects, p)
		}
	}
	var tasks []Task
	for _, t := range s.tasks {
		if t.ProjectID != id {
			tasks = append(tasks, t)
		}
	}
	var pending []PendingWork
	for _, pw := range s.pending {
		if pw.ProjectID != id {
			pending = append(pending, pw)
		}
	}
	var orders []Order
	for _, o := range s.orders {
		if o.ProjectID != id {
			orders = append(orders, o)
		}
	}
	s.projects = projects
	s.tasks = tasks
	s.pending = pending
	s.orders = orders
	return s.commit(ctx)
}

// DeleteTask removes the task and its pending-work rows, clears the parent
// reference of any surviving child, then re-aggregates the owning project.
// Children are kept; only the link to the removed task goes.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.taskLocked(id)
	if t == nil {
		return ErrTaskNotFound
	}
	projectID := t.ProjectID

	var tasks []Task
	for _, t := range s.tasks {
		if t.ID == id {
			continue
		}
		if t.ParentTaskID != nil && *t.ParentTaskID == id {
			t.ParentTaskID = nil
		}
		tasks = append(tasks, t)
	}
	var pending []PendingWork
	for _, pw := range s.pending {
		if pw.TaskID != id {
			pending = append(pending, pw)
		}
	}
	s.tasks = tasks
	s.pending = pending
	s.recomputeProjectLocked(projectID)
	return s.commit(ctx)
}

// DeletePendingWork removes a single pending-work row. Nothing cascades
// below it; callers that want the blended task progress refreshed invoke
// BlendTaskProgress themselves.
func (s *Store) DeletePendingWork(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.pendingLocked(id)
	if row == nil {
		return ErrPendingWorkNotFound
	}
	projectID := row.ProjectID

	var pending []PendingWork
	for _, pw := range s.pending {
		if pw.ID != id {
			pending = append(pending, pw)
		}
	}
	s.pending = pending
	s.recomputeProjectLocked(projectID)
	return s.commit(ctx)
}
