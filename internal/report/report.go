// Package report assembles the read-side data a reporting or export layer
// consumes. All percentages here are rounded to 2 decimals for display; the
// store keeps full precision.
package report

import (
	"math"

	"github.com/nmer1/Project-Tracking-App/internal/tracker"
)

// CategoryProgress is one sub-progress line of a project report.
type CategoryProgress struct {
	Category tracker.Category `json:"category"`
	Progress float64          `json:"progress"`
}

// TaskLine is one task row of a project report.
type TaskLine struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Category     tracker.Category `json:"category"`
	Duration     float64          `json:"duration"`
	Progress     float64          `json:"progress"`
	PendingItems string           `json:"pending_items,omitempty"`
}

// PendingLine is one pending-work row of a project report.
type PendingLine struct {
	ID          int64                 `json:"id"`
	TaskID      int64                 `json:"task_id"`
	Description string                `json:"description"`
	Status      tracker.PendingStatus `json:"status"`
	DueDate     string                `json:"due_date"`
}

// ProjectReport is everything the reporting tab renders for one project.
type ProjectReport struct {
	ProjectID       int64              `json:"project_id"`
	Name            string             `json:"name"`
	Notes           string             `json:"notes"`
	OverallProgress float64            `json:"overall_progress"`
	SubProgress     []CategoryProgress `json:"sub_progress"`
	Tasks           []TaskLine         `json:"tasks"`
	Orders          []tracker.Order    `json:"orders"`
	PendingWork     []PendingLine      `json:"pending_work"`
}

// Build assembles the report for one project.
func Build(store *tracker.Store, projectID int64) (*ProjectReport, error) {
	p, err := store.ProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	rep := &ProjectReport{
		ProjectID:       p.ID,
		Name:            p.Name,
		Notes:           p.Notes,
		OverallProgress: round2(p.OverallProgress),
		SubProgress:     make([]CategoryProgress, 0, len(tracker.Categories)),
		Orders:          store.OrdersByProject(projectID),
	}
	for _, cat := range tracker.Categories {
		rep.SubProgress = append(rep.SubProgress, CategoryProgress{
			Category: cat,
			Progress: round2(p.SubProgress[cat]),
		})
	}
	for _, t := range store.TasksByProject(projectID) {
		rep.Tasks = append(rep.Tasks, TaskLine{
			ID:           t.ID,
			Name:         t.Name,
			Category:     t.Category,
			Duration:     t.Duration,
			Progress:     round2(t.Progress),
			PendingItems: t.PendingItems,
		})
	}
	for _, pw := range store.PendingWorkByProject(projectID) {
		rep.PendingWork = append(rep.PendingWork, PendingLine{
			ID:          pw.ID,
			TaskID:      pw.TaskID,
			Description: pw.Description,
			Status:      pw.Status,
			DueDate:     pw.DueDate,
		})
	}
	return rep, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
