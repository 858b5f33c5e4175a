package engine

import (
	"context"

	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/model"
	"go.uber.org/zap"
)

// Recover finds running instances with no pending task and no continuation
// in flight and re-drives them from their durably recorded position. A
// crash between persisting an instance position and persisting its task (or
// finishing its auto handler) leaves exactly this shape behind.
func (e *Engine) Recover(ctx context.Context) {
	instances, err := e.instances.ListRunningInstances()
	if err != nil {
		logger.Error("recovery sweep could not list running instances", zap.Error(err))
		return
	}
	for _, instance := range instances {
		if err := e.ResumeInstance(ctx, instance.Id); err != nil {
			logger.Error("error resuming instance", zap.String("instance", instance.Id), zap.Error(err))
		}
	}
}

func (e *Engine) RunningInstances() ([]model.WorkflowInstance, error) {
	return e.instances.ListRunningInstances()
}

func (e *Engine) ResumeInstance(ctx context.Context, instanceId string) error {
	e.locks.Lock(instanceId)
	defer e.locks.Unlock(instanceId)

	instance, err := e.instances.GetInstance(instanceId)
	if err != nil {
		if isNotFound(err) {
			return ErrInstanceNotFound
		}
		return err
	}
	if instance.Status != model.INSTANCE_RUNNING {
		return nil
	}
	pending, err := e.tasks.PendingTasksForInstance(instanceId)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		// Parked on a human task, nothing to re-drive.
		return nil
	}
	def, err := e.definitions.Get(instance.DefinitionId)
	if err != nil {
		if isNotFound(err) {
			return ErrDefinitionNotFound
		}
		return err
	}
	node, ok := def.NodeById(instance.CurrentNode)
	if !ok {
		return e.markFailed(instance, model.FAILURE_NO_MATCHING_TRANSITION,
			"recorded position "+instance.CurrentNode+" is not a node of definition "+def.Id)
	}
	logger.Info("re-driving instance from recorded position", zap.String("instance", instanceId), zap.String("node", node.Id), zap.String("kind", string(node.Kind)))
	outcome, parked, err := e.executeNode(ctx, def, instance, node)
	if err != nil || parked {
		return err
	}
	return e.advanceFrom(ctx, def, instance, node.Id, outcome)
}
