package analytics

// WorkflowDataCollector records the audit trail of engine activity: node
// executions, task lifecycle, terminal instance transitions.
type WorkflowDataCollector interface {
	RecordNodeExecution(tenantId string, instanceId string, nodeId string, kind string)
	RecordTaskCreated(tenantId string, instanceId string, taskId string, nodeId string, assignee string)
	RecordTaskCompleted(tenantId string, instanceId string, taskId string, result string, userId string)
	RecordInstanceTerminal(tenantId string, instanceId string, status string, reason string)
}

type noopCollector struct{}

func (noopCollector) RecordNodeExecution(string, string, string, string) {}

func (noopCollector) RecordTaskCreated(string, string, string, string, string) {}

func (noopCollector) RecordTaskCompleted(string, string, string, string, string) {}

func (noopCollector) RecordInstanceTerminal(string, string, string, string) {}

func NewNoopCollector() WorkflowDataCollector {
	return noopCollector{}
}
