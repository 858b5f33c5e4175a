package metadata

import (
	"fmt"

	"github.com/medgovern/medflow/model"
)

// Validate checks the structural invariants of a definition graph before it
// is stored. Cycles are legal; dangling transitions and unknown kinds are
// not.
func Validate(def model.WorkflowDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("definition name can not be empty")
	}
	if def.ProcessType == "" {
		return fmt.Errorf("definition process type can not be empty")
	}
	if len(def.Nodes) == 0 {
		return fmt.Errorf("definition has no nodes")
	}
	nodeIds := make(map[string]model.NodeKind)
	starts := 0
	ends := 0
	for _, node := range def.Nodes {
		if node.Id == "" {
			return fmt.Errorf("node id can not be empty")
		}
		if _, ok := nodeIds[node.Id]; ok {
			return fmt.Errorf("node id %s is duplicate", node.Id)
		}
		if _, err := model.ToNodeKind(string(node.Kind)); err != nil {
			return fmt.Errorf("node %s: %w", node.Id, err)
		}
		switch node.Kind {
		case model.NODE_KIND_START:
			starts++
		case model.NODE_KIND_END:
			ends++
		case model.NODE_KIND_TASK:
			if node.TaskType == "" {
				return fmt.Errorf("task node %s has no task type", node.Id)
			}
		case model.NODE_KIND_AUTO:
			if node.ActionKey == "" {
				return fmt.Errorf("auto node %s has no action key", node.Id)
			}
		}
		nodeIds[node.Id] = node.Kind
	}
	if starts != 1 {
		return fmt.Errorf("definition must have exactly one start node, has %d", starts)
	}
	if ends == 0 {
		return fmt.Errorf("definition must have at least one end node")
	}
	seen := make(map[string]bool)
	for _, t := range def.Transitions {
		if _, ok := nodeIds[t.From]; !ok {
			return fmt.Errorf("transition from undefined node %s", t.From)
		}
		if _, ok := nodeIds[t.To]; !ok {
			return fmt.Errorf("transition to undefined node %s", t.To)
		}
		edge := t.From + "\x00" + t.Label()
		if seen[edge] {
			return fmt.Errorf("duplicate transition from %s on condition %s", t.From, t.Label())
		}
		seen[edge] = true
	}
	for id, kind := range nodeIds {
		if kind == model.NODE_KIND_END {
			continue
		}
		if len(def.OutgoingConditions(id)) == 0 {
			return fmt.Errorf("node %s has no outgoing transition", id)
		}
	}
	return nil
}
