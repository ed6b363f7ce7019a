package tracker_test

import (
	"context"
	"testing"

	"github.com/nmer1/Project-Tracking-App/internal/tracker"
	"github.com/stretchr/testify/require"
)

func TestRecompute_NoTasks(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)

	p, err = store.RecomputeProject(ctx, p.ID)
	require.NoError(t, err)
	for _, cat := range tracker.Categories {
		require.Zero(t, p.SubProgress[cat])
	}
	require.Zero(t, p.OverallProgress)
}

func TestRecompute_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.RecomputeProject(context.Background(), 99)
	require.ErrorIs(t, err, tracker.ErrProjectNotFound)
}

// Two electrical tasks at 40% and 60% plus one plumbing task at 0%: the
// electrical sub-progress is their mean, plumbing stays 0, and the overall
// figure divides by the full category count, not by categories with tasks.
func TestRecompute_DividesByFullCategoryCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)

	for _, progress := range []float64{40, 60} {
		_, err = store.AddTask(ctx, tracker.TaskInput{
			ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical, Progress: progress,
		})
		require.NoError(t, err)
	}
	_, err = store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "pipework", Category: tracker.CategoryPlumbing, Progress: 0,
	})
	require.NoError(t, err)

	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.InDelta(t, 50, p.SubProgress[tracker.CategoryElectrical], 1e-9)
	require.Zero(t, p.SubProgress[tracker.CategoryPlumbing])
	require.InDelta(t, 50.0/float64(len(tracker.Categories)), p.OverallProgress, 1e-9)
}

// A category with one task weighs the same as a category with ten.
func TestRecompute_CategoriesWeighEqually(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)

	_, err = store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "signage", Category: tracker.CategorySignage, Progress: 10,
	})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err = store.AddTask(ctx, tracker.TaskInput{
			ProjectID: p.ID, Name: "ceiling", Category: tracker.CategoryCeiling, Progress: 90,
		})
		require.NoError(t, err)
	}

	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.InDelta(t, 10, p.SubProgress[tracker.CategorySignage], 1e-9)
	require.InDelta(t, 90, p.SubProgress[tracker.CategoryCeiling], 1e-9)
	require.InDelta(t, (10.0+90.0)/float64(len(tracker.Categories)), p.OverallProgress, 1e-9)
}

func TestRecompute_TracksTaskMutations(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	task, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical, Progress: 100,
	})
	require.NoError(t, err)

	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.InDelta(t, 100.0/float64(len(tracker.Categories)), p.OverallProgress, 1e-9)

	_, err = store.UpdateTaskProgress(ctx, task.ID, 50)
	require.NoError(t, err)
	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.InDelta(t, 50.0/float64(len(tracker.Categories)), p.OverallProgress, 1e-9)

	require.NoError(t, store.DeleteTask(ctx, task.ID))
	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.Zero(t, p.OverallProgress)
}

func TestBlend_NoPendingReadsFullyResolved(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	task, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical, Progress: 40,
	})
	require.NoError(t, err)

	blended, err := store.BlendTaskProgress(ctx, task.ID)
	require.NoError(t, err)
	require.InDelta(t, 70, blended.Progress, 1e-9) // 0.5*40 + 0.5*100
}

func TestBlend_OneOfThreeResolved(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	task, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical, Progress: 40,
	})
	require.NoError(t, err)

	statuses := []tracker.PendingStatus{
		tracker.PendingStatusResolved,
		tracker.PendingStatusPending,
		tracker.PendingStatusInProgress,
	}
	for _, status := range statuses {
		_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
			TaskID: task.ID, Description: "item", Status: status, DueDate: "soon",
		})
		require.NoError(t, err)
	}

	// ratio 1/3: 0.5*40 + 0.5*33.33... = 36.67 after rounding.
	blended, err := store.BlendTaskProgress(ctx, task.ID)
	require.NoError(t, err)
	require.InDelta(t, 36.67, blended.Progress, 1e-9)

	// The project roll-up reflects the blended value.
	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.InDelta(t, 36.67/float64(len(tracker.Categories)), p.OverallProgress, 1e-9)
}

// The blend is one-way: the stored progress becomes the next call's manual
// input, so repeating it compounds instead of repeating.
func TestBlend_Compounds(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	task, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical, Progress: 40,
	})
	require.NoError(t, err)
	_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID: task.ID, Description: "item", Status: tracker.PendingStatusResolved, DueDate: "soon",
	})
	require.NoError(t, err)
	_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID: task.ID, Description: "item", Status: tracker.PendingStatusPending, DueDate: "soon",
	})
	require.NoError(t, err)

	first, err := store.BlendTaskProgress(ctx, task.ID)
	require.NoError(t, err)
	require.InDelta(t, 45, first.Progress, 1e-9) // 0.5*40 + 0.5*50

	second, err := store.BlendTaskProgress(ctx, task.ID)
	require.NoError(t, err)
	require.InDelta(t, 47.5, second.Progress, 1e-9) // 0.5*45 + 0.5*50
	require.NotEqual(t, first.Progress, second.Progress)
}

func TestBlend_TaskNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.BlendTaskProgress(context.Background(), 99)
	require.ErrorIs(t, err, tracker.ErrTaskNotFound)
}
