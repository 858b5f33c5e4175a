package engine

import (
	"github.com/medgovern/medflow/model"
)

func (e *Engine) GetInstance(id string) (*model.WorkflowInstance, error) {
	instance, err := e.instances.GetInstance(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return instance, nil
}

func (e *Engine) ListInstances(tenantId string, status model.InstanceStatus) ([]model.WorkflowInstance, error) {
	return e.instances.ListInstances(tenantId, status)
}

func (e *Engine) GetTask(id string) (*model.WorkflowTask, error) {
	task, err := e.tasks.GetTask(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListUserTasks returns the tasks a user may act on: unassigned tasks,
// tasks assigned to them directly, and tasks assigned to a role they hold.
func (e *Engine) ListUserTasks(userId string, tenantId string, status model.TaskStatus) ([]model.WorkflowTask, error) {
	tasks, err := e.tasks.ListTasks(tenantId, status)
	if err != nil {
		return nil, err
	}
	var out []model.WorkflowTask
	for _, task := range tasks {
		visible, err := e.authorize(userId, task.Assignee)
		if err != nil {
			return nil, err
		}
		if visible {
			out = append(out, task)
		}
	}
	return out, nil
}
