package model

import (
	"fmt"
	"strings"
)

type NodeKind string

const NODE_KIND_START NodeKind = "start"
const NODE_KIND_TASK NodeKind = "task"
const NODE_KIND_AUTO NodeKind = "auto"
const NODE_KIND_END NodeKind = "end"

func ToNodeKind(kind string) (NodeKind, error) {
	switch NodeKind(strings.ToLower(kind)) {
	case NODE_KIND_START:
		return NODE_KIND_START, nil
	case NODE_KIND_TASK:
		return NODE_KIND_TASK, nil
	case NODE_KIND_AUTO:
		return NODE_KIND_AUTO, nil
	case NODE_KIND_END:
		return NODE_KIND_END, nil
	}
	return "", fmt.Errorf("invalid node kind %s", kind)
}

type DefinitionStatus string

const DEFINITION_ACTIVE DefinitionStatus = "active"
const DEFINITION_INACTIVE DefinitionStatus = "inactive"

// DefaultCondition is the outcome label produced by start and auto nodes,
// and the implicit condition of transitions that do not declare one.
const DefaultCondition = "default"

type Node struct {
	Id           string         `json:"id"`
	Kind         NodeKind       `json:"kind"`
	Name         string         `json:"name"`
	TaskType     string         `json:"taskType,omitempty"`
	AssigneeRole string         `json:"assigneeRole,omitempty"`
	ActionKey    string         `json:"actionKey,omitempty"`
	InputParams  map[string]any `json:"inputParams,omitempty"`
}

type Transition struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition,omitempty"`
}

// Label returns the condition the transition fires on, applying the
// default-condition convention for unlabelled edges.
func (t Transition) Label() string {
	if t.Condition == "" {
		return DefaultCondition
	}
	return t.Condition
}

type WorkflowDefinition struct {
	Id          string           `json:"id"`
	TenantId    string           `json:"tenantId"`
	Name        string           `json:"name"`
	ProcessType string           `json:"processType"`
	Version     int              `json:"version"`
	Nodes       []Node           `json:"nodes"`
	Transitions []Transition     `json:"transitions"`
	Status      DefinitionStatus `json:"status"`
}

// NodeById scans the definition for a node. Definitions hold tens of nodes
// at most, a linear scan is fine.
func (wd *WorkflowDefinition) NodeById(id string) (*Node, bool) {
	for i := range wd.Nodes {
		if wd.Nodes[i].Id == id {
			return &wd.Nodes[i], true
		}
	}
	return nil, false
}

// Next resolves the transition leaving from with the given outcome label.
func (wd *WorkflowDefinition) Next(from string, outcome string) (*Transition, bool) {
	for i := range wd.Transitions {
		t := &wd.Transitions[i]
		if t.From == from && t.Label() == outcome {
			return t, true
		}
	}
	return nil, false
}

// OutgoingConditions lists the condition vocabulary of a node.
func (wd *WorkflowDefinition) OutgoingConditions(from string) []string {
	var out []string
	for _, t := range wd.Transitions {
		if t.From == from {
			out = append(out, t.Label())
		}
	}
	return out
}

type DefinitionSummary struct {
	Id      string           `json:"id"`
	Name    string           `json:"name"`
	Type    string           `json:"type"`
	Version int              `json:"version"`
	Status  DefinitionStatus `json:"status"`
}
