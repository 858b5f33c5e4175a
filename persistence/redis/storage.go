package redis

import (
	"context"
	"strconv"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/model"
	"github.com/medgovern/medflow/persistence"
	"github.com/medgovern/medflow/util"
	"go.uber.org/zap"
)

const DEFINITION_KEY string = "WFDEF"
const INSTANCE_KEY string = "WFINST"
const INSTANCE_VERSION_KEY string = "WFINST_V"
const INSTANCE_INDEX_KEY string = "WFINST_IDX"
const INSTANCE_RUNNING_KEY string = "WFINST_RUNNING"
const TASK_KEY string = "WFTASK"
const TASK_INDEX_KEY string = "WFTASK_IDX"
const TASK_PENDING_KEY string = "WFTASK_PENDING"

var _ persistence.Storage = new(redisStorage)

type redisStorage struct {
	*baseDao
	defCodec  util.EncoderDecoder[model.WorkflowDefinition]
	instCodec util.EncoderDecoder[model.WorkflowInstance]
	taskCodec util.EncoderDecoder[model.WorkflowTask]
}

func NewRedisStorage(conf Config) *redisStorage {
	return &redisStorage{
		baseDao:   newBaseDao(conf),
		defCodec:  util.NewJsonEncoderDecoder[model.WorkflowDefinition](),
		instCodec: util.NewJsonEncoderDecoder[model.WorkflowInstance](),
		taskCodec: util.NewJsonEncoderDecoder[model.WorkflowTask](),
	}
}

func (rs *redisStorage) SaveDefinition(def model.WorkflowDefinition) error {
	key := rs.getNamespaceKey(DEFINITION_KEY)
	ctx := context.Background()
	data, err := rs.defCodec.Encode(def)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, def.Id, string(data)).Err(); err != nil {
		logger.Error("error saving workflow definition", zap.String("id", def.Id), zap.Error(err))
		return persistence.StorageLayerError{Cause: err}
	}
	return nil
}

func (rs *redisStorage) GetDefinition(id string) (*model.WorkflowDefinition, error) {
	key := rs.getNamespaceKey(DEFINITION_KEY)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, id).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "definition", Id: id}
	}
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	return rs.defCodec.Decode([]byte(val))
}

func (rs *redisStorage) GetAllDefinitions() ([]model.WorkflowDefinition, error) {
	key := rs.getNamespaceKey(DEFINITION_KEY)
	ctx := context.Background()
	rows, err := rs.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	out := make([]model.WorkflowDefinition, 0, len(rows))
	for _, val := range rows {
		def, err := rs.defCodec.Decode([]byte(val))
		if err != nil {
			return nil, err
		}
		out = append(out, *def)
	}
	return out, nil
}

// SaveInstance guards the write with WATCH on a per-instance version key so
// that two concurrent advances of the same instance cannot both apply.
func (rs *redisStorage) SaveInstance(instance *model.WorkflowInstance) error {
	instKey := rs.getNamespaceKey(INSTANCE_KEY, instance.Id)
	versionKey := rs.getNamespaceKey(INSTANCE_VERSION_KEY, instance.Id)
	indexKey := rs.getNamespaceKey(INSTANCE_INDEX_KEY, instance.TenantId)
	ctx := context.Background()
	err := rs.redisClient.Watch(ctx, func(tx *rd.Tx) error {
		stored, err := tx.Get(ctx, versionKey).Result()
		if err != nil && err != rd.Nil {
			return persistence.StorageLayerError{Cause: err}
		}
		if err != rd.Nil {
			version, convErr := strconv.Atoi(stored)
			if convErr != nil {
				return persistence.StorageLayerError{Cause: convErr}
			}
			if version != instance.Version {
				return persistence.ConflictError{Kind: "instance", Id: instance.Id}
			}
		} else if instance.Version != 0 {
			return persistence.ConflictError{Kind: "instance", Id: instance.Id}
		}
		instance.Version++
		data, err := rs.instCodec.Encode(*instance)
		if err != nil {
			instance.Version--
			return err
		}
		runningKey := rs.getNamespaceKey(INSTANCE_RUNNING_KEY)
		_, err = tx.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
			pipe.Set(ctx, versionKey, instance.Version, 0)
			pipe.Set(ctx, instKey, string(data), 0)
			pipe.SAdd(ctx, indexKey, instance.Id)
			if instance.Status == model.INSTANCE_RUNNING {
				pipe.SAdd(ctx, runningKey, instance.Id)
			} else {
				pipe.SRem(ctx, runningKey, instance.Id)
			}
			return nil
		})
		if err != nil {
			instance.Version--
		}
		return err
	}, versionKey)
	if err == rd.TxFailedErr {
		return persistence.ConflictError{Kind: "instance", Id: instance.Id}
	}
	return err
}

func (rs *redisStorage) GetInstance(id string) (*model.WorkflowInstance, error) {
	key := rs.getNamespaceKey(INSTANCE_KEY, id)
	ctx := context.Background()
	val, err := rs.redisClient.Get(ctx, key).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "instance", Id: id}
	}
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	return rs.instCodec.Decode([]byte(val))
}

func (rs *redisStorage) ListInstances(tenantId string, status model.InstanceStatus) ([]model.WorkflowInstance, error) {
	indexKey := rs.getNamespaceKey(INSTANCE_INDEX_KEY, tenantId)
	ctx := context.Background()
	ids, err := rs.redisClient.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	var out []model.WorkflowInstance
	for _, id := range ids {
		inst, err := rs.GetInstance(id)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		if status != "" && inst.Status != status {
			continue
		}
		out = append(out, *inst)
	}
	return out, nil
}

func (rs *redisStorage) ListRunningInstances() ([]model.WorkflowInstance, error) {
	runningKey := rs.getNamespaceKey(INSTANCE_RUNNING_KEY)
	ctx := context.Background()
	ids, err := rs.redisClient.SMembers(ctx, runningKey).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	var out []model.WorkflowInstance
	for _, id := range ids {
		inst, err := rs.GetInstance(id)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		if inst.Status == model.INSTANCE_RUNNING {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (rs *redisStorage) SaveTask(task *model.WorkflowTask) error {
	taskKey := rs.getNamespaceKey(TASK_KEY, task.Id)
	indexKey := rs.getNamespaceKey(TASK_INDEX_KEY, task.TenantId)
	pendingKey := rs.getNamespaceKey(TASK_PENDING_KEY, task.InstanceId)
	ctx := context.Background()
	data, err := rs.taskCodec.Encode(*task)
	if err != nil {
		return err
	}
	_, err = rs.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, taskKey, string(data), 0)
		pipe.SAdd(ctx, indexKey, task.Id)
		if task.Status == model.TASK_PENDING {
			pipe.SAdd(ctx, pendingKey, task.Id)
		} else {
			pipe.SRem(ctx, pendingKey, task.Id)
		}
		return nil
	})
	if err != nil {
		logger.Error("error saving workflow task", zap.String("id", task.Id), zap.Error(err))
		return persistence.StorageLayerError{Cause: err}
	}
	return nil
}

func (rs *redisStorage) GetTask(id string) (*model.WorkflowTask, error) {
	key := rs.getNamespaceKey(TASK_KEY, id)
	ctx := context.Background()
	val, err := rs.redisClient.Get(ctx, key).Result()
	if err == rd.Nil {
		return nil, persistence.NotFoundError{Kind: "task", Id: id}
	}
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	return rs.taskCodec.Decode([]byte(val))
}

// CompleteTask watches the task key, so a concurrent completion attempt
// fails the transaction and surfaces as a conflict.
func (rs *redisStorage) CompleteTask(taskId string, result string, comments string, at time.Time) (*model.WorkflowTask, error) {
	taskKey := rs.getNamespaceKey(TASK_KEY, taskId)
	ctx := context.Background()
	var completed *model.WorkflowTask
	err := rs.redisClient.Watch(ctx, func(tx *rd.Tx) error {
		val, err := tx.Get(ctx, taskKey).Result()
		if err == rd.Nil {
			return persistence.NotFoundError{Kind: "task", Id: taskId}
		}
		if err != nil {
			return persistence.StorageLayerError{Cause: err}
		}
		task, err := rs.taskCodec.Decode([]byte(val))
		if err != nil {
			return err
		}
		if task.Status != model.TASK_PENDING {
			return persistence.ConflictError{Kind: "task", Id: taskId}
		}
		task.Status = model.TASK_COMPLETED
		task.Result = result
		task.Comments = comments
		task.CompletedAt = &at
		data, err := rs.taskCodec.Encode(*task)
		if err != nil {
			return err
		}
		pendingKey := rs.getNamespaceKey(TASK_PENDING_KEY, task.InstanceId)
		_, err = tx.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
			pipe.Set(ctx, taskKey, string(data), 0)
			pipe.SRem(ctx, pendingKey, taskId)
			return nil
		})
		if err != nil {
			return err
		}
		completed = task
		return nil
	}, taskKey)
	if err == rd.TxFailedErr {
		return nil, persistence.ConflictError{Kind: "task", Id: taskId}
	}
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (rs *redisStorage) ListTasks(tenantId string, status model.TaskStatus) ([]model.WorkflowTask, error) {
	indexKey := rs.getNamespaceKey(TASK_INDEX_KEY, tenantId)
	ctx := context.Background()
	ids, err := rs.redisClient.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	var out []model.WorkflowTask
	for _, id := range ids {
		task, err := rs.GetTask(id)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		if status != "" && task.Status != status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (rs *redisStorage) PendingTasksForInstance(instanceId string) ([]model.WorkflowTask, error) {
	pendingKey := rs.getNamespaceKey(TASK_PENDING_KEY, instanceId)
	ctx := context.Background()
	ids, err := rs.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Cause: err}
	}
	var out []model.WorkflowTask
	for _, id := range ids {
		task, err := rs.GetTask(id)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		if task.Status == model.TASK_PENDING {
			out = append(out, *task)
		}
	}
	return out, nil
}
