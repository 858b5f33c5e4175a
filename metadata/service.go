package metadata

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/model"
	"github.com/medgovern/medflow/persistence"
	c "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefinitionService is the definition catalog: validated writes, cached
// reads. Definitions are immutable once stored, so the cache never needs
// per-entry invalidation; a miss reloads the whole catalog.
type DefinitionService interface {
	Get(definitionId string) (*model.WorkflowDefinition, error)
	ListActive(tenantId string) ([]model.WorkflowDefinition, error)
	Save(def model.WorkflowDefinition) (*model.WorkflowDefinition, error)
	SeedDefaults(tenantId string) error
}

type definitionService struct {
	storage persistence.DefinitionStorage
	cache   *c.Cache
}

func NewDefinitionService(storage persistence.DefinitionStorage) DefinitionService {
	return &definitionService{
		storage: storage,
		cache:   c.New(c.NoExpiration, 10*time.Minute),
	}
}

func (s *definitionService) Get(definitionId string) (*model.WorkflowDefinition, error) {
	if cached, found := s.cache.Get(definitionId); found {
		def := cached.(model.WorkflowDefinition)
		return &def, nil
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	if cached, found := s.cache.Get(definitionId); found {
		def := cached.(model.WorkflowDefinition)
		return &def, nil
	}
	return nil, persistence.NotFoundError{Kind: "definition", Id: definitionId}
}

func (s *definitionService) ListActive(tenantId string) ([]model.WorkflowDefinition, error) {
	defs, err := s.storage.GetAllDefinitions()
	if err != nil {
		return nil, err
	}
	var out []model.WorkflowDefinition
	for _, def := range defs {
		if def.TenantId == tenantId && def.Status == model.DEFINITION_ACTIVE {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *definitionService) Save(def model.WorkflowDefinition) (*model.WorkflowDefinition, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	existing, err := s.storage.GetAllDefinitions()
	if err != nil {
		return nil, err
	}
	version := 0
	for _, d := range existing {
		if d.TenantId == def.TenantId && d.ProcessType == def.ProcessType && d.Version > version {
			version = d.Version
		}
	}
	def.Id = uuid.New().String()
	def.Version = version + 1
	def.Status = model.DEFINITION_ACTIVE
	if err := s.storage.SaveDefinition(def); err != nil {
		return nil, err
	}
	s.cache.Set(def.Id, def, c.NoExpiration)
	logger.Info("workflow definition stored", zap.String("id", def.Id), zap.String("type", def.ProcessType), zap.Int("version", def.Version))
	return &def, nil
}

// SeedDefaults upserts the default templates keyed by (tenant, processType):
// a tenant that already has an active definition of a type keeps it.
func (s *definitionService) SeedDefaults(tenantId string) error {
	existing, err := s.storage.GetAllDefinitions()
	if err != nil {
		return err
	}
	present := make(map[string]bool)
	for _, d := range existing {
		if d.TenantId == tenantId && d.Status == model.DEFINITION_ACTIVE {
			present[d.ProcessType] = true
		}
	}
	for _, template := range DefaultTemplates(tenantId) {
		if present[template.ProcessType] {
			continue
		}
		if err := Validate(template); err != nil {
			return fmt.Errorf("invalid default template %s: %w", template.ProcessType, err)
		}
		if err := s.storage.SaveDefinition(template); err != nil {
			return err
		}
		logger.Info("seeded default workflow template", zap.String("tenant", tenantId), zap.String("type", template.ProcessType))
	}
	return nil
}

func (s *definitionService) reload() error {
	defs, err := s.storage.GetAllDefinitions()
	if err != nil {
		return err
	}
	for _, def := range defs {
		s.cache.Set(def.Id, def, c.NoExpiration)
	}
	return nil
}
