package model

import "time"

type InstanceStatus string

const INSTANCE_RUNNING InstanceStatus = "running"
const INSTANCE_COMPLETED InstanceStatus = "completed"
const INSTANCE_FAILED InstanceStatus = "failed"

type FailureReason string

const FAILURE_NO_MATCHING_TRANSITION FailureReason = "NoMatchingTransition"
const FAILURE_ACTION_HANDLER FailureReason = "ActionHandlerFailed"
const FAILURE_STEP_BUDGET FailureReason = "StepBudgetExceeded"

type WorkflowInstance struct {
	Id            string         `json:"id"`
	TenantId      string         `json:"tenantId"`
	DefinitionId  string         `json:"definitionId"`
	Status        InstanceStatus `json:"status"`
	CurrentNode   string         `json:"currentNode"`
	Context       map[string]any `json:"context"`
	Initiator     string         `json:"initiator"`
	FailureReason FailureReason  `json:"failureReason,omitempty"`
	FailureDetail string         `json:"failureDetail,omitempty"`
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"createdAt"`
	StartedAt     *time.Time     `json:"startedAt,omitempty"`
	CompletedAt   *time.Time     `json:"completedAt,omitempty"`
}

type StartWorkflowRequest struct {
	DefinitionId string         `json:"definitionId"`
	TenantId     string         `json:"tenantId"`
	Context      map[string]any `json:"context"`
	Initiator    string         `json:"initiator"`
}
