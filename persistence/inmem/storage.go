package inmem

import (
	"sync"
	"time"

	"github.com/medgovern/medflow/model"
	"github.com/medgovern/medflow/persistence"
	"github.com/medgovern/medflow/util"
)

var _ persistence.Storage = new(Storage)

// Storage is a map-backed implementation used by tests and the "memory"
// storage mode. Rows pass through the JSON codec on every read and write so
// that stored state round-trips exactly like the redis implementation.
type Storage struct {
	mu          sync.Mutex
	definitions map[string][]byte
	instances   map[string][]byte
	tasks       map[string][]byte

	defCodec  util.EncoderDecoder[model.WorkflowDefinition]
	instCodec util.EncoderDecoder[model.WorkflowInstance]
	taskCodec util.EncoderDecoder[model.WorkflowTask]
}

func NewStorage() *Storage {
	return &Storage{
		definitions: make(map[string][]byte),
		instances:   make(map[string][]byte),
		tasks:       make(map[string][]byte),
		defCodec:    util.NewJsonEncoderDecoder[model.WorkflowDefinition](),
		instCodec:   util.NewJsonEncoderDecoder[model.WorkflowInstance](),
		taskCodec:   util.NewJsonEncoderDecoder[model.WorkflowTask](),
	}
}

func (s *Storage) SaveDefinition(def model.WorkflowDefinition) error {
	data, err := s.defCodec.Encode(def)
	if err != nil {
		return persistence.StorageLayerError{Cause: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[def.Id] = data
	return nil
}

func (s *Storage) GetDefinition(id string) (*model.WorkflowDefinition, error) {
	s.mu.Lock()
	data, ok := s.definitions[id]
	s.mu.Unlock()
	if !ok {
		return nil, persistence.NotFoundError{Kind: "definition", Id: id}
	}
	return s.defCodec.Decode(data)
}

func (s *Storage) GetAllDefinitions() ([]model.WorkflowDefinition, error) {
	s.mu.Lock()
	rows := make([][]byte, 0, len(s.definitions))
	for _, data := range s.definitions {
		rows = append(rows, data)
	}
	s.mu.Unlock()
	out := make([]model.WorkflowDefinition, 0, len(rows))
	for _, data := range rows {
		def, err := s.defCodec.Decode(data)
		if err != nil {
			return nil, persistence.StorageLayerError{Cause: err}
		}
		out = append(out, *def)
	}
	return out, nil
}

func (s *Storage) SaveInstance(instance *model.WorkflowInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.instances[instance.Id]; ok {
		stored, err := s.instCodec.Decode(data)
		if err != nil {
			return persistence.StorageLayerError{Cause: err}
		}
		if stored.Version != instance.Version {
			return persistence.ConflictError{Kind: "instance", Id: instance.Id}
		}
	}
	instance.Version++
	data, err := s.instCodec.Encode(*instance)
	if err != nil {
		instance.Version--
		return persistence.StorageLayerError{Cause: err}
	}
	s.instances[instance.Id] = data
	return nil
}

func (s *Storage) GetInstance(id string) (*model.WorkflowInstance, error) {
	s.mu.Lock()
	data, ok := s.instances[id]
	s.mu.Unlock()
	if !ok {
		return nil, persistence.NotFoundError{Kind: "instance", Id: id}
	}
	return s.instCodec.Decode(data)
}

func (s *Storage) ListInstances(tenantId string, status model.InstanceStatus) ([]model.WorkflowInstance, error) {
	s.mu.Lock()
	rows := make([][]byte, 0, len(s.instances))
	for _, data := range s.instances {
		rows = append(rows, data)
	}
	s.mu.Unlock()
	var out []model.WorkflowInstance
	for _, data := range rows {
		inst, err := s.instCodec.Decode(data)
		if err != nil {
			return nil, persistence.StorageLayerError{Cause: err}
		}
		if inst.TenantId != tenantId {
			continue
		}
		if status != "" && inst.Status != status {
			continue
		}
		out = append(out, *inst)
	}
	return out, nil
}

func (s *Storage) ListRunningInstances() ([]model.WorkflowInstance, error) {
	s.mu.Lock()
	rows := make([][]byte, 0, len(s.instances))
	for _, data := range s.instances {
		rows = append(rows, data)
	}
	s.mu.Unlock()
	var out []model.WorkflowInstance
	for _, data := range rows {
		inst, err := s.instCodec.Decode(data)
		if err != nil {
			return nil, persistence.StorageLayerError{Cause: err}
		}
		if inst.Status == model.INSTANCE_RUNNING {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (s *Storage) SaveTask(task *model.WorkflowTask) error {
	data, err := s.taskCodec.Encode(*task)
	if err != nil {
		return persistence.StorageLayerError{Cause: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.Id] = data
	return nil
}

func (s *Storage) GetTask(id string) (*model.WorkflowTask, error) {
	s.mu.Lock()
	data, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return nil, persistence.NotFoundError{Kind: "task", Id: id}
	}
	return s.taskCodec.Decode(data)
}

func (s *Storage) CompleteTask(taskId string, result string, comments string, at time.Time) (*model.WorkflowTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.tasks[taskId]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "task", Id: taskId}
	}
	task, err := s.taskCodec.Decode(data)
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	if task.Status != model.TASK_PENDING {
		return nil, persistence.ConflictError{Kind: "task", Id: taskId}
	}
	task.Status = model.TASK_COMPLETED
	task.Result = result
	task.Comments = comments
	task.CompletedAt = &at
	updated, err := s.taskCodec.Encode(*task)
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	s.tasks[taskId] = updated
	return task, nil
}

func (s *Storage) ListTasks(tenantId string, status model.TaskStatus) ([]model.WorkflowTask, error) {
	s.mu.Lock()
	rows := make([][]byte, 0, len(s.tasks))
	for _, data := range s.tasks {
		rows = append(rows, data)
	}
	s.mu.Unlock()
	var out []model.WorkflowTask
	for _, data := range rows {
		task, err := s.taskCodec.Decode(data)
		if err != nil {
			return nil, persistence.StorageLayerError{Cause: err}
		}
		if task.TenantId != tenantId {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (s *Storage) PendingTasksForInstance(instanceId string) ([]model.WorkflowTask, error) {
	s.mu.Lock()
	rows := make([][]byte, 0, len(s.tasks))
	for _, data := range s.tasks {
		rows = append(rows, data)
	}
	s.mu.Unlock()
	var out []model.WorkflowTask
	for _, data := range rows {
		task, err := s.taskCodec.Decode(data)
		if err != nil {
			return nil, persistence.StorageLayerError{Cause: err}
		}
		if task.InstanceId == instanceId && task.Status == model.TASK_PENDING {
			out = append(out, *task)
		}
	}
	return out, nil
}
