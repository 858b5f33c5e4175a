package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medgovern/medflow/action"
	"github.com/medgovern/medflow/analytics"
	"github.com/medgovern/medflow/identity"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/metadata"
	"github.com/medgovern/medflow/model"
	"github.com/medgovern/medflow/persistence"
	"github.com/medgovern/medflow/util"
	"go.uber.org/zap"
)

const DefaultStepBudget = 64

// Engine is the state-machine interpreter. A start or a task completion
// drives an instance forward through automated nodes until it parks at a
// task node or reaches a terminal node, persisting at every step.
type Engine struct {
	definitions metadata.DefinitionService
	instances   persistence.InstanceStorage
	tasks       persistence.TaskStorage
	registry    *action.Registry
	roles       identity.RoleResolver
	collector   analytics.WorkflowDataCollector
	stepBudget  int
	locks       *keyedMutex
}

func NewEngine(definitions metadata.DefinitionService, instances persistence.InstanceStorage, tasks persistence.TaskStorage,
	registry *action.Registry, roles identity.RoleResolver, collector analytics.WorkflowDataCollector, stepBudget int) *Engine {
	if stepBudget <= 0 {
		stepBudget = DefaultStepBudget
	}
	if collector == nil {
		collector = analytics.NewNoopCollector()
	}
	return &Engine{
		definitions: definitions,
		instances:   instances,
		tasks:       tasks,
		registry:    registry,
		roles:       roles,
		collector:   collector,
		stepBudget:  stepBudget,
		locks:       newKeyedMutex(),
	}
}

func (e *Engine) StartWorkflow(ctx context.Context, req model.StartWorkflowRequest) (*model.WorkflowInstance, error) {
	def, err := e.definitions.Get(req.DefinitionId)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDefinitionNotFound
		}
		return nil, err
	}
	startNode := ""
	for _, node := range def.Nodes {
		if node.Kind == model.NODE_KIND_START {
			startNode = node.Id
			break
		}
	}
	if startNode == "" {
		return nil, fmt.Errorf("definition %s has no start node", def.Id)
	}
	wfContext := req.Context
	if wfContext == nil {
		wfContext = make(map[string]any)
	}
	now := time.Now().UTC()
	instance := &model.WorkflowInstance{
		Id:           uuid.New().String(),
		TenantId:     req.TenantId,
		DefinitionId: def.Id,
		Status:       model.INSTANCE_RUNNING,
		CurrentNode:  startNode,
		Context:      wfContext,
		Initiator:    req.Initiator,
		CreatedAt:    now,
		StartedAt:    &now,
	}
	if err := e.saveInstance(instance); err != nil {
		return nil, err
	}
	logger.Info("workflow instance started", zap.String("definition", def.Id), zap.String("instance", instance.Id), zap.String("initiator", req.Initiator))

	e.locks.Lock(instance.Id)
	defer e.locks.Unlock(instance.Id)
	if err := e.advanceFrom(ctx, def, instance, startNode, model.DefaultCondition); err != nil {
		return nil, err
	}
	return instance, nil
}

func (e *Engine) CompleteTask(ctx context.Context, taskId string, userId string, result string, comments string) (*model.WorkflowTask, error) {
	task, err := e.tasks.GetTask(taskId)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.Status != model.TASK_PENDING {
		return nil, ErrTaskAlreadyCompleted
	}
	authorized, err := e.authorize(userId, task.Assignee)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrNotAuthorized
	}

	e.locks.Lock(task.InstanceId)
	defer e.locks.Unlock(task.InstanceId)

	completed, err := e.tasks.CompleteTask(taskId, result, comments, time.Now().UTC())
	if err != nil {
		var conflict persistence.ConflictError
		if errors.As(err, &conflict) {
			return nil, ErrTaskAlreadyCompleted
		}
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	e.collector.RecordTaskCompleted(completed.TenantId, completed.InstanceId, completed.Id, result, userId)
	logger.Info("task completed", zap.String("task", completed.Id), zap.String("instance", completed.InstanceId), zap.String("result", result), zap.String("user", userId))

	instance, err := e.instances.GetInstance(completed.InstanceId)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	def, err := e.definitions.Get(instance.DefinitionId)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDefinitionNotFound
		}
		return nil, err
	}
	// The human's action is recorded; a continuation failure from here on
	// marks the instance failed instead of erroring this call.
	if err := e.advanceFrom(ctx, def, instance, completed.NodeId, result); err != nil {
		return nil, err
	}
	return completed, nil
}

func (e *Engine) authorize(userId string, assignee string) (bool, error) {
	if assignee == "" || assignee == userId {
		return true, nil
	}
	if role, ok := model.AssigneeRole(assignee); ok {
		return e.roles.HasRole(userId, role)
	}
	return false, nil
}

// advanceFrom resolves the transition leaving resolvedNode with the outcome
// label and walks forward until the instance parks at a task node, reaches
// an end node, or fails. Callers must hold the instance lock.
func (e *Engine) advanceFrom(ctx context.Context, def *model.WorkflowDefinition, instance *model.WorkflowInstance, resolvedNode string, outcome string) error {
	for steps := 0; ; steps++ {
		if steps >= e.stepBudget {
			return e.markFailed(instance, model.FAILURE_STEP_BUDGET,
				fmt.Sprintf("exceeded %d node executions in one advance, aborting suspected auto-node loop", e.stepBudget))
		}
		transition, ok := def.Next(resolvedNode, outcome)
		if !ok {
			return e.markFailed(instance, model.FAILURE_NO_MATCHING_TRANSITION,
				fmt.Sprintf("no transition from node %q on outcome %q (known: %v)", resolvedNode, outcome, def.OutgoingConditions(resolvedNode)))
		}
		node, ok := def.NodeById(transition.To)
		if !ok {
			return e.markFailed(instance, model.FAILURE_NO_MATCHING_TRANSITION,
				fmt.Sprintf("transition from %q leads to undefined node %q", resolvedNode, transition.To))
		}
		instance.CurrentNode = node.Id
		if err := e.saveInstance(instance); err != nil {
			return err
		}
		nextOutcome, parked, err := e.executeNode(ctx, def, instance, node)
		if err != nil || parked {
			return err
		}
		resolvedNode, outcome = node.Id, nextOutcome
	}
}

// executeNode runs the node the instance currently sits on. parked reports
// that the walk stops here: the instance is waiting for a human or is
// terminal. The instance position is already durable when this is called.
func (e *Engine) executeNode(ctx context.Context, def *model.WorkflowDefinition, instance *model.WorkflowInstance, node *model.Node) (nextOutcome string, parked bool, err error) {
	e.collector.RecordNodeExecution(instance.TenantId, instance.Id, node.Id, string(node.Kind))
	switch node.Kind {
	case model.NODE_KIND_START:
		return model.DefaultCondition, false, nil

	case model.NODE_KIND_TASK:
		task := newTask(instance, node)
		if err := e.tasks.SaveTask(task); err != nil {
			return "", true, err
		}
		e.collector.RecordTaskCreated(task.TenantId, task.InstanceId, task.Id, task.NodeId, task.Assignee)
		logger.Info("task created", zap.String("task", task.Id), zap.String("instance", instance.Id), zap.String("node", node.Id), zap.String("assignee", task.Assignee))
		return "", true, nil

	case model.NODE_KIND_AUTO:
		handlerInput := instance.Context
		if len(node.InputParams) > 0 {
			handlerInput = make(map[string]any, len(instance.Context)+len(node.InputParams))
			for k, v := range instance.Context {
				handlerInput[k] = v
			}
			for k, v := range util.ResolveInputParams(instance.Context, node.InputParams) {
				handlerInput[k] = v
			}
		}
		updates, invokeErr := e.registry.Invoke(ctx, node.ActionKey, handlerInput)
		if invokeErr != nil {
			return "", true, e.markFailed(instance, model.FAILURE_ACTION_HANDLER,
				fmt.Sprintf("handler %q at node %q: %v", node.ActionKey, node.Id, invokeErr))
		}
		if len(updates) > 0 {
			if instance.Context == nil {
				instance.Context = make(map[string]any, len(updates))
			}
			for k, v := range updates {
				instance.Context[k] = v
			}
			if err := e.saveInstance(instance); err != nil {
				return "", true, err
			}
		}
		return model.DefaultCondition, false, nil

	case model.NODE_KIND_END:
		now := time.Now().UTC()
		instance.Status = model.INSTANCE_COMPLETED
		instance.CompletedAt = &now
		if err := e.saveInstance(instance); err != nil {
			return "", true, err
		}
		e.collector.RecordInstanceTerminal(instance.TenantId, instance.Id, string(instance.Status), "")
		logger.Info("workflow instance completed", zap.String("instance", instance.Id))
		return "", true, nil
	}
	return "", true, fmt.Errorf("unknown node kind %s", node.Kind)
}

func (e *Engine) markFailed(instance *model.WorkflowInstance, reason model.FailureReason, detail string) error {
	now := time.Now().UTC()
	instance.Status = model.INSTANCE_FAILED
	instance.FailureReason = reason
	instance.FailureDetail = detail
	instance.CompletedAt = &now
	if err := e.saveInstance(instance); err != nil {
		return err
	}
	e.collector.RecordInstanceTerminal(instance.TenantId, instance.Id, string(instance.Status), string(reason))
	logger.Error("workflow instance failed", zap.String("instance", instance.Id), zap.String("reason", string(reason)), zap.String("detail", detail))
	return nil
}

func (e *Engine) saveInstance(instance *model.WorkflowInstance) error {
	err := e.instances.SaveInstance(instance)
	if err == nil {
		return nil
	}
	var conflict persistence.ConflictError
	if errors.As(err, &conflict) {
		return ErrConcurrentModification
	}
	return err
}

func newTask(instance *model.WorkflowInstance, node *model.Node) *model.WorkflowTask {
	assignee := ""
	if node.AssigneeRole != "" {
		assignee = model.RoleAssignee(node.AssigneeRole)
	}
	return &model.WorkflowTask{
		Id:         uuid.New().String(),
		TenantId:   instance.TenantId,
		InstanceId: instance.Id,
		NodeId:     node.Id,
		Type:       node.TaskType,
		Status:     model.TASK_PENDING,
		Assignee:   assignee,
		CreatedAt:  time.Now().UTC(),
	}
}

func isNotFound(err error) bool {
	var notFound persistence.NotFoundError
	return errors.As(err, &notFound)
}
