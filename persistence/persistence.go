package persistence

import (
	"time"

	"github.com/medgovern/medflow/model"
)

type DefinitionStorage interface {
	SaveDefinition(def model.WorkflowDefinition) error
	GetDefinition(id string) (*model.WorkflowDefinition, error)
	GetAllDefinitions() ([]model.WorkflowDefinition, error)
}

type InstanceStorage interface {
	// SaveInstance persists the instance with an optimistic version check:
	// the stored version must equal instance.Version, the write bumps it.
	// A mismatch returns ConflictError.
	SaveInstance(instance *model.WorkflowInstance) error
	GetInstance(id string) (*model.WorkflowInstance, error)
	// ListInstances with empty status returns all statuses.
	ListInstances(tenantId string, status model.InstanceStatus) ([]model.WorkflowInstance, error)
	// ListRunningInstances spans all tenants; it feeds the recovery sweep.
	ListRunningInstances() ([]model.WorkflowInstance, error)
}

type TaskStorage interface {
	SaveTask(task *model.WorkflowTask) error
	GetTask(id string) (*model.WorkflowTask, error)
	// CompleteTask flips the task pending->completed atomically and records
	// result and comments. A task that is not pending returns ConflictError.
	CompleteTask(taskId string, result string, comments string, at time.Time) (*model.WorkflowTask, error)
	// ListTasks with empty status returns all statuses.
	ListTasks(tenantId string, status model.TaskStatus) ([]model.WorkflowTask, error)
	PendingTasksForInstance(instanceId string) ([]model.WorkflowTask, error)
}

type Storage interface {
	DefinitionStorage
	InstanceStorage
	TaskStorage
}
