package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medgovern/medflow/model"
	"github.com/stretchr/testify/require"
)

// storedInstance plants a running instance directly in storage, the shape a
// crash between two persistence steps leaves behind.
func storedInstance(t *testing.T, f *fixture, def model.WorkflowDefinition, node string) *model.WorkflowInstance {
	t.Helper()
	now := time.Now().UTC()
	instance := &model.WorkflowInstance{
		Id:           uuid.New().String(),
		TenantId:     "default",
		DefinitionId: def.Id,
		Status:       model.INSTANCE_RUNNING,
		CurrentNode:  node,
		Context:      map[string]any{"term": "E11.101"},
		Initiator:    "alice",
		CreatedAt:    now,
		StartedAt:    &now,
	}
	require.NoError(t, f.storage.SaveInstance(instance))
	return instance
}

func TestRecovery(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"task node with lost task row gets a fresh task": func(t *testing.T) {
			def := approvalDefinition()
			f := newFixture(t, def)
			instance := storedInstance(t, f, def, "A")

			f.engine.Recover(context.Background())

			task := f.pendingTask(t, instance.Id)
			require.Equal(t, "A", task.NodeId)
			reloaded, err := f.engine.GetInstance(instance.Id)
			require.NoError(t, err)
			require.Equal(t, model.INSTANCE_RUNNING, reloaded.Status)
		},
		"auto node is re-driven to the next park point": func(t *testing.T) {
			def := autoDefinition("publish")
			f := newFixture(t, def)
			invoked := 0
			f.registry.Register("publish", func(ctx context.Context, wfContext map[string]any) (map[string]any, error) {
				invoked++
				return map[string]any{"published": true}, nil
			})
			instance := storedInstance(t, f, def, "publish")

			f.engine.Recover(context.Background())

			require.Equal(t, 1, invoked)
			reloaded, err := f.engine.GetInstance(instance.Id)
			require.NoError(t, err)
			require.Equal(t, model.INSTANCE_COMPLETED, reloaded.Status)
			require.Equal(t, "end", reloaded.CurrentNode)
		},
		"instance waiting on a pending task is left alone": func(t *testing.T) {
			def := approvalDefinition()
			f := newFixture(t, def)
			instance := f.start(t, def)
			task := f.pendingTask(t, instance.Id)

			f.engine.Recover(context.Background())

			// Still the same single task, not a duplicate.
			after := f.pendingTask(t, instance.Id)
			require.Equal(t, task.Id, after.Id)
		},
		"terminal instances are not swept": func(t *testing.T) {
			def := approvalDefinition()
			f := newFixture(t, def)
			instance := f.start(t, def)
			task := f.pendingTask(t, instance.Id)
			_, err := f.engine.CompleteTask(context.Background(), task.Id, "alice", "approved", "")
			require.NoError(t, err)

			f.engine.Recover(context.Background())

			reloaded, err := f.engine.GetInstance(instance.Id)
			require.NoError(t, err)
			require.Equal(t, model.INSTANCE_COMPLETED, reloaded.Status)
			pending, err := f.storage.PendingTasksForInstance(instance.Id)
			require.NoError(t, err)
			require.Empty(t, pending)
		},
	} {
		t.Run(scenario, fn)
	}
}
