package tracker

import (
	"context"
	"math"
)

// recomputeProjectLocked rolls a project's tasks up into per-category
// sub-progress and the overall figure. Each category's sub-progress is the
// plain mean of its tasks' progress (0 with no tasks); the overall figure is
// the mean across all recognized categories, so a category with one task
// weighs the same as one with fifty. Values keep full precision; rounding
// happens only at the reporting edge.
func (s *Store) recomputeProjectLocked(projectID int64) {
	p := s.projectLocked(projectID)
	if p == nil {
		return
	}

	sums := make(map[Category]float64, len(Categories))
	counts := make(map[Category]int, len(Categories))
	for _, t := range s.tasks {
		if t.ProjectID != projectID {
			continue
		}
		sums[t.Category] += t.Progress
		counts[t.Category]++
	}

	var total float64
	for _, cat := range Categories {
		sub := 0.0
		if n := counts[cat]; n > 0 {
			sub = sums[cat] / float64(n)
		}
		p.SubProgress[cat] = sub
		total += sub
	}
	p.OverallProgress = total / float64(len(Categories))
}

// RecomputeProject re-aggregates one project and commits. The store already
// re-aggregates after every task and pending-work mutation; this is the
// explicit entry point for callers that changed nothing but want fresh
// figures persisted.
func (s *Store) RecomputeProject(ctx context.Context, projectID int64) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.projectLocked(projectID)
	if p == nil {
		return Project{}, ErrProjectNotFound
	}
	s.recomputeProjectLocked(projectID)
	return cloneProject(*p), s.commit(ctx)
}

// resolutionRatioLocked is resolved/total over a task's pending-work items.
// A task with no items reads as fully resolved (1.0).
func (s *Store) resolutionRatioLocked(taskID int64) float64 {
	total, resolved := 0, 0
	for _, pw := range s.pending {
		if pw.TaskID != taskID {
			continue
		}
		total++
		if pw.Status == PendingStatusResolved {
			resolved++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(resolved) / float64(total)
}

// BlendTaskProgress folds a task's pending-work resolution ratio into its
// progress: 50% stored progress, 50% resolution ratio, rounded to 2
// decimals. The blend is one-way: the stored progress becomes the "manual"
// input of the next call, so running it twice compounds rather than
// repeating. The owning project is re-aggregated afterwards.
func (s *Store) BlendTaskProgress(ctx context.Context, taskID int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.taskLocked(taskID)
	if t == nil {
		return Task{}, ErrTaskNotFound
	}

	ratio := s.resolutionRatioLocked(taskID)
	t.Progress = round2(0.5*t.Progress + 0.5*ratio*100)
	s.recomputeProjectLocked(t.ProjectID)
	return *t, s.commit(ctx)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
