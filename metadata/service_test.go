package metadata

import (
	"testing"

	"github.com/google/uuid"
	"github.com/medgovern/medflow/model"
	"github.com/medgovern/medflow/persistence/inmem"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaults(t *testing.T) {
	storage := inmem.NewStorage()
	service := NewDefinitionService(storage)

	require.NoError(t, service.SeedDefaults("default"))
	first, err := service.ListActive("default")
	require.NoError(t, err)
	require.Len(t, first, 3)

	// Seeding again is an upsert keyed by (tenant, processType): no
	// duplicates, ids unchanged.
	require.NoError(t, service.SeedDefaults("default"))
	second, err := service.ListActive("default")
	require.NoError(t, err)
	require.Len(t, second, 3)

	ids := make(map[string]bool)
	for _, def := range first {
		ids[def.Id] = true
	}
	for _, def := range second {
		require.True(t, ids[def.Id])
	}

	// A different tenant gets its own copies.
	require.NoError(t, service.SeedDefaults("tenant-2"))
	other, err := service.ListActive("tenant-2")
	require.NoError(t, err)
	require.Len(t, other, 3)
}

func TestGetReloadsOnCacheMiss(t *testing.T) {
	storage := inmem.NewStorage()
	service := NewDefinitionService(storage)

	// Written behind the service's back, as a second process would.
	def := DefaultTemplates("default")[0]
	require.NoError(t, storage.SaveDefinition(def))

	got, err := service.Get(def.Id)
	require.NoError(t, err)
	require.Equal(t, def.Id, got.Id)
	require.Equal(t, def.ProcessType, got.ProcessType)

	_, err = service.Get("no-such-definition")
	require.Error(t, err)
}

func TestSaveAssignsVersion(t *testing.T) {
	storage := inmem.NewStorage()
	service := NewDefinitionService(storage)

	def := DefaultTemplates("default")[0]
	def.Id = ""
	def.Version = 0

	v1, err := service.Save(def)
	require.NoError(t, err)
	require.Equal(t, 1, v1.Version)
	require.NotEmpty(t, v1.Id)

	v2, err := service.Save(def)
	require.NoError(t, err)
	require.Equal(t, 2, v2.Version)
	require.NotEqual(t, v1.Id, v2.Id)
}

func TestValidate(t *testing.T) {
	base := func() model.WorkflowDefinition {
		def := DefaultTemplates("default")[0]
		def.Id = uuid.New().String()
		return def
	}
	for scenario, fn := range map[string]func(t *testing.T){
		"default templates are valid": func(t *testing.T) {
			for _, def := range DefaultTemplates("default") {
				require.NoError(t, Validate(def))
			}
		},
		"duplicate node id": func(t *testing.T) {
			def := base()
			def.Nodes = append(def.Nodes, def.Nodes[0])
			require.Error(t, Validate(def))
		},
		"transition to undefined node": func(t *testing.T) {
			def := base()
			def.Transitions = append(def.Transitions, model.Transition{From: "start", To: "nowhere", Condition: "x"})
			require.Error(t, Validate(def))
		},
		"auto node without action key": func(t *testing.T) {
			def := base()
			for i := range def.Nodes {
				if def.Nodes[i].Kind == model.NODE_KIND_AUTO {
					def.Nodes[i].ActionKey = ""
				}
			}
			require.Error(t, Validate(def))
		},
		"task node without task type": func(t *testing.T) {
			def := base()
			for i := range def.Nodes {
				if def.Nodes[i].Kind == model.NODE_KIND_TASK {
					def.Nodes[i].TaskType = ""
				}
			}
			require.Error(t, Validate(def))
		},
		"missing start node": func(t *testing.T) {
			def := base()
			var nodes []model.Node
			for _, n := range def.Nodes {
				if n.Kind != model.NODE_KIND_START {
					nodes = append(nodes, n)
				}
			}
			def.Nodes = nodes
			require.Error(t, Validate(def))
		},
		"duplicate condition on one node": func(t *testing.T) {
			def := base()
			def.Transitions = append(def.Transitions, def.Transitions[0])
			require.Error(t, Validate(def))
		},
	} {
		t.Run(scenario, fn)
	}
}
