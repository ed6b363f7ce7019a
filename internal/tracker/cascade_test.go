package tracker_test

import (
	"context"
	"testing"

	"github.com/nmer1/Project-Tracking-App/internal/tracker"
	"github.com/stretchr/testify/require"
)

// Project with 2 tasks, 3 pending-work rows, and 1 order: deleting it must
// leave zero rows referencing it in every collection.
func TestDeleteProject_Cascades(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	survivor, err := store.AddProject(ctx, "Lab B", "")
	require.NoError(t, err)

	t1, err := store.AddTask(ctx, tracker.TaskInput{ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical})
	require.NoError(t, err)
	t2, err := store.AddTask(ctx, tracker.TaskInput{ProjectID: p.ID, Name: "pipework", Category: tracker.CategoryPlumbing})
	require.NoError(t, err)
	keepTask, err := store.AddTask(ctx, tracker.TaskInput{ProjectID: survivor.ID, Name: "ceiling", Category: tracker.CategoryCeiling})
	require.NoError(t, err)

	for _, taskID := range []int64{t1.ID, t1.ID, t2.ID} {
		_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
			TaskID: taskID, Description: "item", Status: tracker.PendingStatusPending, DueDate: "soon",
		})
		require.NoError(t, err)
	}
	keepPending, err := store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID: keepTask.ID, Description: "keep", Status: tracker.PendingStatusPending, DueDate: "soon",
	})
	require.NoError(t, err)

	_, err = store.AddOrder(ctx, tracker.OrderInput{
		ProjectID:     p.ID,
		Company:       "Eco Air",
		OrderStatus:   tracker.OrderStatusOrdered,
		LPOStatus:     tracker.LPOStatusPending,
		InvoiceStatus: tracker.InvoiceStatusNotSubmitted,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteProject(ctx, p.ID))

	_, err = store.ProjectByID(p.ID)
	require.ErrorIs(t, err, tracker.ErrProjectNotFound)
	require.Empty(t, store.TasksByProject(p.ID))
	require.Empty(t, store.PendingWorkByProject(p.ID))
	require.Empty(t, store.OrdersByProject(p.ID))

	// The other project is untouched.
	require.Len(t, store.TasksByProject(survivor.ID), 1)
	require.Len(t, store.PendingWorkByTask(keepTask.ID), 1)
	require.Equal(t, keepPending.ID, store.PendingWorkByTask(keepTask.ID)[0].ID)
}

func TestDeleteTask_CascadesPendingAndReaggregates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	doomed, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical, Progress: 80,
	})
	require.NoError(t, err)
	kept, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "pipework", Category: tracker.CategoryPlumbing, Progress: 20,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
			TaskID: doomed.ID, Description: "item", Status: tracker.PendingStatusPending, DueDate: "soon",
		})
		require.NoError(t, err)
	}
	_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID: kept.ID, Description: "keep", Status: tracker.PendingStatusPending, DueDate: "soon",
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTask(ctx, doomed.ID))

	require.Empty(t, store.PendingWorkByTask(doomed.ID))
	require.Len(t, store.PendingWorkByTask(kept.ID), 1)

	// The former owner is re-aggregated: only the plumbing task remains.
	p, err = store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.Zero(t, p.SubProgress[tracker.CategoryElectrical])
	require.InDelta(t, 20, p.SubProgress[tracker.CategoryPlumbing], 1e-9)
	require.InDelta(t, 20.0/float64(len(tracker.Categories)), p.OverallProgress, 1e-9)
}

// Deleting a parent keeps its children but detaches them, so a child's
// stored fields stay writable afterwards.
func TestDeleteTask_DetachesChildren(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	parent, err := store.AddTask(ctx, tracker.TaskInput{ProjectID: p.ID, Name: "first fix", Category: tracker.CategoryElectrical})
	require.NoError(t, err)
	child, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID, Name: "second fix", Category: tracker.CategoryElectrical,
		Progress: 30, ParentTaskID: &parent.ID,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTask(ctx, parent.ID))

	got, err := store.TaskByID(child.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentTaskID)

	// Echoing the stored fields back through UpdateTask must remain a
	// valid write.
	updated, err := store.UpdateTask(ctx, child.ID, tracker.TaskInput{
		ProjectID: got.ProjectID, Name: got.Name, Category: got.Category,
		Duration: got.Duration, Weight: got.Weight, Progress: got.Progress,
		ParentTaskID: got.ParentTaskID, PendingItems: got.PendingItems,
	})
	require.NoError(t, err)
	require.Nil(t, updated.ParentTaskID)
}

func TestDeletePendingWork_RemovesOnlyThatRow(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Lab A", "")
	require.NoError(t, err)
	task, err := store.AddTask(ctx, tracker.TaskInput{ProjectID: p.ID, Name: "wiring", Category: tracker.CategoryElectrical})
	require.NoError(t, err)

	first, err := store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID: task.ID, Description: "a", Status: tracker.PendingStatusPending, DueDate: "soon",
	})
	require.NoError(t, err)
	second, err := store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID: task.ID, Description: "b", Status: tracker.PendingStatusResolved, DueDate: "soon",
	})
	require.NoError(t, err)

	require.NoError(t, store.DeletePendingWork(ctx, first.ID))

	remaining := store.PendingWorkByTask(task.ID)
	require.Len(t, remaining, 1)
	require.Equal(t, second.ID, remaining[0].ID)

	// The task itself is untouched; refreshing the blend is the caller's
	// decision.
	got, err := store.TaskByID(task.ID)
	require.NoError(t, err)
	require.Equal(t, task.Progress, got.Progress)
}

func TestDeleteNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.ErrorIs(t, store.DeleteProject(ctx, 1), tracker.ErrProjectNotFound)
	require.ErrorIs(t, store.DeleteTask(ctx, 1), tracker.ErrTaskNotFound)
	require.ErrorIs(t, store.DeletePendingWork(ctx, 1), tracker.ErrPendingWorkNotFound)
	require.ErrorIs(t, store.DeleteOrder(ctx, 1), tracker.ErrOrderNotFound)
}
