package reputationservice

import (
	"log/slog"

	httpadapter "veritas/contexts/knowledge-curation/reputation-service/adapters/http"
	"veritas/contexts/knowledge-curation/reputation-service/adapters/memory"
	"veritas/contexts/knowledge-curation/reputation-service/application"
	"veritas/contexts/knowledge-curation/reputation-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Inputs ports.InputsRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Inputs: deps.Inputs,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Inputs: store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
