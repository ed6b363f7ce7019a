package report_test

import (
	"context"
	"testing"

	"github.com/nmer1/Project-Tracking-App/internal/report"
	"github.com/nmer1/Project-Tracking-App/internal/repository/mocks"
	"github.com/nmer1/Project-Tracking-App/internal/tracker"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *tracker.Store {
	t.Helper()
	gateway := new(mocks.SnapshotGateway)
	gateway.On("Save", mock.Anything, mock.Anything).Return(nil)
	return tracker.NewStore(gateway, nil)
}

func TestBuild_ProjectNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := report.Build(store, 999)
	require.ErrorIs(t, err, tracker.ErrProjectNotFound)
}

func TestBuild_EmptyProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Warehouse", "")
	require.NoError(t, err)

	rep, err := report.Build(store, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, rep.ProjectID)
	require.Equal(t, "Warehouse", rep.Name)
	require.Zero(t, rep.OverallProgress)
	require.Len(t, rep.SubProgress, len(tracker.Categories))
	for _, sub := range rep.SubProgress {
		require.Zero(t, sub.Progress, "category %s", sub.Category)
	}
	require.Empty(t, rep.Tasks)
	require.Empty(t, rep.Orders)
	require.Empty(t, rep.PendingWork)
}

func TestBuild_FullProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Mall Fitout", "phase one")
	require.NoError(t, err)

	task, err := store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID,
		Name:      "First fix",
		Category:  tracker.CategoryElectrical,
		Duration:  5,
		Progress:  40,
	})
	require.NoError(t, err)

	_, err = store.UpsertPendingWork(ctx, tracker.PendingWorkInput{
		TaskID:      task.ID,
		Description: "await DB boards",
		Status:      tracker.PendingStatusPending,
		DueDate:     "2026-09-15",
	})
	require.NoError(t, err)

	_, err = store.AddOrder(ctx, tracker.OrderInput{
		ProjectID:     p.ID,
		Company:       "Eco Air",
		ItemCategory:  "AC",
		OrderStatus:   tracker.OrderStatusOrdered,
		LPOStatus:     tracker.LPOStatusReceived,
		InvoiceStatus: tracker.InvoiceStatusNotSubmitted,
	})
	require.NoError(t, err)

	rep, err := report.Build(store, p.ID)
	require.NoError(t, err)

	require.Len(t, rep.Tasks, 1)
	require.Equal(t, "First fix", rep.Tasks[0].Name)
	require.Equal(t, 40.0, rep.Tasks[0].Progress)

	require.Len(t, rep.PendingWork, 1)
	require.Equal(t, task.ID, rep.PendingWork[0].TaskID)

	require.Len(t, rep.Orders, 1)
	require.Equal(t, "Eco Air", rep.Orders[0].Company)
}

// Overall progress is 40/18 here, an infinite decimal; the report shows it at
// two decimals while the store keeps full precision.
func TestBuild_RoundsProgressForDisplay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.AddProject(ctx, "Mall Fitout", "")
	require.NoError(t, err)
	_, err = store.AddTask(ctx, tracker.TaskInput{
		ProjectID: p.ID,
		Name:      "First fix",
		Category:  tracker.CategoryElectrical,
		Progress:  40,
	})
	require.NoError(t, err)

	rep, err := report.Build(store, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2.22, rep.OverallProgress)

	stored, err := store.ProjectByID(p.ID)
	require.NoError(t, err)
	require.NotEqual(t, rep.OverallProgress, stored.OverallProgress)
}
