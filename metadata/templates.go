package metadata

import (
	"github.com/google/uuid"
	"github.com/medgovern/medflow/model"
)

const PROCESS_TERMINOLOGY_REVIEW = "terminology_review"
const PROCESS_RULE_APPROVAL = "rule_approval"
const PROCESS_GOVERNANCE_PIPELINE = "governance_pipeline"

// DefaultTemplates builds the stock review pipelines a tenant starts with.
func DefaultTemplates(tenantId string) []model.WorkflowDefinition {
	return []model.WorkflowDefinition{
		{
			Id:          uuid.New().String(),
			TenantId:    tenantId,
			Name:        "Terminology Review",
			ProcessType: PROCESS_TERMINOLOGY_REVIEW,
			Version:     1,
			Status:      model.DEFINITION_ACTIVE,
			Nodes: []model.Node{
				{Id: "start", Kind: model.NODE_KIND_START, Name: "Start"},
				{Id: "submit", Kind: model.NODE_KIND_TASK, Name: "Submit for Review", TaskType: "submit"},
				{Id: "review", Kind: model.NODE_KIND_TASK, Name: "First Review", TaskType: "approval", AssigneeRole: "reviewer"},
				{Id: "approve", Kind: model.NODE_KIND_TASK, Name: "Final Review", TaskType: "approval", AssigneeRole: "admin"},
				{Id: "publish", Kind: model.NODE_KIND_AUTO, Name: "Publish", ActionKey: "terminology_publish"},
				{Id: "end", Kind: model.NODE_KIND_END, Name: "End"},
			},
			Transitions: []model.Transition{
				{From: "start", To: "submit"},
				{From: "submit", To: "review"},
				{From: "review", To: "approve", Condition: "approved"},
				{From: "review", To: "submit", Condition: "rejected"},
				{From: "approve", To: "publish", Condition: "approved"},
				{From: "approve", To: "review", Condition: "rejected"},
				{From: "publish", To: "end"},
			},
		},
		{
			Id:          uuid.New().String(),
			TenantId:    tenantId,
			Name:        "Rule Approval",
			ProcessType: PROCESS_RULE_APPROVAL,
			Version:     1,
			Status:      model.DEFINITION_ACTIVE,
			Nodes: []model.Node{
				{Id: "start", Kind: model.NODE_KIND_START, Name: "Start"},
				{Id: "compile", Kind: model.NODE_KIND_AUTO, Name: "Compile Rule", ActionKey: "rule_compile"},
				{Id: "test", Kind: model.NODE_KIND_TASK, Name: "Sandbox Test", TaskType: "review"},
				{Id: "approve", Kind: model.NODE_KIND_TASK, Name: "Approval", TaskType: "approval", AssigneeRole: "admin"},
				{Id: "deploy", Kind: model.NODE_KIND_AUTO, Name: "Deploy", ActionKey: "rule_deploy"},
				{Id: "end", Kind: model.NODE_KIND_END, Name: "End"},
			},
			Transitions: []model.Transition{
				{From: "start", To: "compile"},
				{From: "compile", To: "test"},
				{From: "test", To: "approve", Condition: "passed"},
				{From: "test", To: "compile", Condition: "failed"},
				{From: "approve", To: "deploy", Condition: "approved"},
				{From: "approve", To: "test", Condition: "rejected"},
				{From: "deploy", To: "end"},
			},
		},
		{
			Id:          uuid.New().String(),
			TenantId:    tenantId,
			Name:        "Governance Pipeline",
			ProcessType: PROCESS_GOVERNANCE_PIPELINE,
			Version:     1,
			Status:      model.DEFINITION_ACTIVE,
			Nodes: []model.Node{
				{Id: "start", Kind: model.NODE_KIND_START, Name: "Pipeline Start"},
				{Id: "ingest", Kind: model.NODE_KIND_AUTO, Name: "Policy Document Extraction", ActionKey: "deepke_extraction"},
				{Id: "terminology", Kind: model.NODE_KIND_TASK, Name: "Terminology Standardization Check", TaskType: "review", AssigneeRole: "reviewer"},
				{Id: "extraction", Kind: model.NODE_KIND_AUTO, Name: "Rule Semantic Compilation", ActionKey: "nlp_compilation"},
				{Id: "review", Kind: model.NODE_KIND_TASK, Name: "Rule Risk Review", TaskType: "approval", AssigneeRole: "admin"},
				{Id: "end", Kind: model.NODE_KIND_END, Name: "Pipeline Complete"},
			},
			Transitions: []model.Transition{
				{From: "start", To: "ingest"},
				{From: "ingest", To: "terminology"},
				{From: "terminology", To: "extraction", Condition: "approved"},
				{From: "extraction", To: "review"},
				{From: "review", To: "end", Condition: "approved"},
				{From: "review", To: "extraction", Condition: "rejected"},
			},
		},
	}
}
