package model

import (
	"strings"
	"time"
)

type TaskStatus string

const TASK_PENDING TaskStatus = "pending"
const TASK_COMPLETED TaskStatus = "completed"

// RolePrefix marks an assignee that refers to a role instead of a concrete
// user, e.g. "role:admin".
const RolePrefix = "role:"

func RoleAssignee(role string) string {
	return RolePrefix + role
}

// AssigneeRole returns the role a task is assigned to, if the assignee is a
// role reference.
func AssigneeRole(assignee string) (string, bool) {
	if strings.HasPrefix(assignee, RolePrefix) {
		return strings.TrimPrefix(assignee, RolePrefix), true
	}
	return "", false
}

type WorkflowTask struct {
	Id          string     `json:"id"`
	TenantId    string     `json:"tenantId"`
	InstanceId  string     `json:"instanceId"`
	NodeId      string     `json:"nodeId"`
	Type        string     `json:"type"`
	Status      TaskStatus `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	Result      string     `json:"result,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type CompleteTaskRequest struct {
	UserId   string `json:"userId"`
	Result   string `json:"result"`
	Comments string `json:"comments,omitempty"`
}
