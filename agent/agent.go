package agent

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/medgovern/medflow/action"
	"github.com/medgovern/medflow/analytics"
	"github.com/medgovern/medflow/config"
	"github.com/medgovern/medflow/engine"
	"github.com/medgovern/medflow/identity"
	"github.com/medgovern/medflow/logger"
	"github.com/medgovern/medflow/metadata"
	"github.com/medgovern/medflow/persistence"
	"github.com/medgovern/medflow/persistence/inmem"
	"github.com/medgovern/medflow/persistence/redis"
	"github.com/medgovern/medflow/rest"
	"github.com/medgovern/medflow/util"
)

// Collaborators are the external boundaries the engine consumes. Leave a
// field nil to get a local default: a static role resolver with no roles
// and a registry holding only the built-in handlers.
type Collaborators struct {
	Roles    identity.RoleResolver
	Registry *action.Registry
}

type Agent struct {
	Config         config.Config
	storage        persistence.Storage
	definitions    metadata.DefinitionService
	registry       *action.Registry
	roles          identity.RoleResolver
	collector      analytics.WorkflowDataCollector
	engine         *engine.Engine
	httpServer     *rest.Server
	recoveryWorker *util.Worker
	recoveryTicker *util.TickWorker
	shutdown       bool
	shutdownLock   sync.Mutex
	wg             sync.WaitGroup
}

func New(cfg config.Config, collab Collaborators) (*Agent, error) {
	a := &Agent{
		Config:   cfg,
		registry: collab.Registry,
		roles:    collab.Roles,
	}
	setup := []func() error{
		a.setupStorage,
		a.setupCollector,
		a.setupDefinitionService,
		a.setupRegistry,
		a.setupEngine,
		a.setupHttpServer,
		a.setupRecovery,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.storage = redis.NewRedisStorage(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
			PoolSize:  a.Config.RedisConfig.PoolSize,
			Password:  a.Config.RedisConfig.Password,
		})
	case config.STORAGE_TYPE_INMEM:
		a.storage = inmem.NewStorage()
	default:
		return fmt.Errorf("unknown storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupCollector() error {
	if a.Config.AuditLogFile == "" {
		a.collector = analytics.NewNoopCollector()
		return nil
	}
	collector, err := analytics.NewLogFileDataCollector(a.Config.AuditLogFile)
	if err != nil {
		return err
	}
	a.collector = collector
	return nil
}

func (a *Agent) setupDefinitionService() error {
	a.definitions = metadata.NewDefinitionService(a.storage)
	if a.Config.DisableSeeding {
		return nil
	}
	tenant := a.Config.SeedTenant
	if tenant == "" {
		tenant = "default"
	}
	return a.definitions.SeedDefaults(tenant)
}

func (a *Agent) setupRegistry() error {
	if a.registry == nil {
		a.registry = action.NewRegistry()
	}
	action.RegisterDefaults(a.registry)
	return nil
}

func (a *Agent) setupEngine() error {
	if a.roles == nil {
		a.roles = identity.NewStaticResolver(nil)
	}
	a.engine = engine.NewEngine(a.definitions, a.storage, a.storage, a.registry, a.roles, a.collector, a.Config.AdvanceStepBudget)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.definitions, a.engine)
	return err
}

func (a *Agent) setupRecovery() error {
	capacity := a.Config.RecoveryCapacity
	if capacity <= 0 {
		capacity = 128
	}
	a.recoveryWorker = util.NewWorker("recovery", &a.wg, func(job util.Job) error {
		return a.engine.ResumeInstance(context.Background(), job.(string))
	}, capacity)
	interval := a.Config.RecoveryInterval
	if interval <= 0 {
		interval = 60
	}
	a.recoveryTicker = util.NewTickWorker("recovery-sweep", time.Duration(interval)*time.Second, a.sweep, &a.wg)
	return nil
}

func (a *Agent) sweep() {
	instances, err := a.engine.RunningInstances()
	if err != nil {
		logger.Error("recovery sweep could not list running instances")
		return
	}
	for _, instance := range instances {
		select {
		case a.recoveryWorker.Sender() <- instance.Id:
		default:
			// Full queue: the next sweep will pick it up.
		}
	}
}

func (a *Agent) Engine() *engine.Engine {
	return a.engine
}

func (a *Agent) Start() error {
	a.recoveryWorker.Start()
	// Recover whatever the previous process left mid-advance before taking
	// traffic.
	a.engine.Recover(context.Background())
	a.recoveryTicker.Start()
	go func() {
		if err := a.httpServer.Start(); err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.recoveryTicker.Stop()
			return nil
		},
		func() error {
			a.recoveryWorker.Stop()
			return nil
		},
		func() error {
			if closer, ok := a.collector.(io.Closer); ok {
				return closer.Close()
			}
			return nil
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
