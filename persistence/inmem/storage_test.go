package inmem

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medgovern/medflow/model"
	"github.com/medgovern/medflow/persistence"
	"github.com/stretchr/testify/require"
)

func newInstance() *model.WorkflowInstance {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.WorkflowInstance{
		Id:           uuid.New().String(),
		TenantId:     "default",
		DefinitionId: uuid.New().String(),
		Status:       model.INSTANCE_RUNNING,
		CurrentNode:  "review",
		Context: map[string]any{
			"term":   "E11.101",
			"count":  float64(3),
			"nested": map[string]any{"ok": true},
		},
		Initiator: "alice",
		CreatedAt: now,
		StartedAt: &now,
	}
}

func TestInstanceRoundTrip(t *testing.T) {
	storage := NewStorage()
	instance := newInstance()
	require.NoError(t, storage.SaveInstance(instance))

	reloaded, err := storage.GetInstance(instance.Id)
	require.NoError(t, err)
	require.Equal(t, instance.CurrentNode, reloaded.CurrentNode)
	require.Equal(t, instance.Status, reloaded.Status)
	require.Equal(t, instance.Context, reloaded.Context)
	require.Equal(t, instance.Version, reloaded.Version)
}

func TestInstanceVersionConflict(t *testing.T) {
	storage := NewStorage()
	instance := newInstance()
	require.NoError(t, storage.SaveInstance(instance))

	stale := *instance
	stale.Version = 0

	err := storage.SaveInstance(&stale)
	var conflict persistence.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The winner can keep writing.
	instance.CurrentNode = "approve"
	require.NoError(t, storage.SaveInstance(instance))
	reloaded, err := storage.GetInstance(instance.Id)
	require.NoError(t, err)
	require.Equal(t, "approve", reloaded.CurrentNode)
}

func TestCompleteTaskOnce(t *testing.T) {
	storage := NewStorage()
	task := &model.WorkflowTask{
		Id:         uuid.New().String(),
		TenantId:   "default",
		InstanceId: uuid.New().String(),
		NodeId:     "review",
		Type:       "approval",
		Status:     model.TASK_PENDING,
		Assignee:   "role:reviewer",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, storage.SaveTask(task))

	completed, err := storage.CompleteTask(task.Id, "approved", "looks right", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, model.TASK_COMPLETED, completed.Status)
	require.Equal(t, "approved", completed.Result)
	require.NotNil(t, completed.CompletedAt)

	_, err = storage.CompleteTask(task.Id, "rejected", "", time.Now().UTC())
	var conflict persistence.ConflictError
	require.ErrorAs(t, err, &conflict)

	pending, err := storage.PendingTasksForInstance(task.InstanceId)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestListFilters(t *testing.T) {
	storage := NewStorage()
	running := newInstance()
	require.NoError(t, storage.SaveInstance(running))
	done := newInstance()
	done.Status = model.INSTANCE_COMPLETED
	require.NoError(t, storage.SaveInstance(done))
	other := newInstance()
	other.TenantId = "tenant-2"
	require.NoError(t, storage.SaveInstance(other))

	all, err := storage.ListInstances("default", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyRunning, err := storage.ListInstances("default", model.INSTANCE_RUNNING)
	require.NoError(t, err)
	require.Len(t, onlyRunning, 1)
	require.Equal(t, running.Id, onlyRunning[0].Id)

	runningAnyTenant, err := storage.ListRunningInstances()
	require.NoError(t, err)
	require.Len(t, runningAnyTenant, 2)
}
