package promotionengine

import (
	"log/slog"
	"time"

	httpadapter "veritas/contexts/knowledge-curation/promotion-engine/adapters/http"
	"veritas/contexts/knowledge-curation/promotion-engine/adapters/memory"
	"veritas/contexts/knowledge-curation/promotion-engine/adapters/ttlcache"
	"veritas/contexts/knowledge-curation/promotion-engine/application"
	"veritas/contexts/knowledge-curation/promotion-engine/application/commands"
	"veritas/contexts/knowledge-curation/promotion-engine/application/queries"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Cache   ports.EligibilityCache
	Store   *memory.Store
}

type Dependencies struct {
	Graphs      ports.GraphRepository
	Votes       ports.VoteRepository
	Methodology ports.MethodologyRepository
	Events      ports.PromotionEventRepository
	Evidence    ports.EvidenceReader
	Challenges  ports.ChallengeReader
	Reputation  ports.ReputationReader
	Idempotency ports.IdempotencyStore
	Tx          ports.TransactionManager
	Cache       ports.EligibilityCache
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	evaluator := application.Evaluator{
		Methodology: deps.Methodology,
		Votes:       deps.Votes,
		Evidence:    deps.Evidence,
		Challenges:  deps.Challenges,
	}
	voteUseCase := commands.VoteUseCase{
		Graphs:     deps.Graphs,
		Votes:      deps.Votes,
		Reputation: deps.Reputation,
		Tx:         deps.Tx,
		Cache:      deps.Cache,
		Publisher:  deps.Publisher,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	stepUseCase := commands.StepUseCase{
		Graphs:      deps.Graphs,
		Methodology: deps.Methodology,
		Tx:          deps.Tx,
		Cache:       deps.Cache,
		Publisher:   deps.Publisher,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	promotionUseCase := commands.PromotionUseCase{
		Graphs:      deps.Graphs,
		Events:      deps.Events,
		Idempotency: deps.Idempotency,
		Evaluator:   evaluator,
		Tx:          deps.Tx,
		Cache:       deps.Cache,
		Publisher:   deps.Publisher,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	eligibilityQueries := queries.EligibilityQueries{
		Graphs:    deps.Graphs,
		Votes:     deps.Votes,
		Events:    deps.Events,
		Evaluator: evaluator,
		Cache:     deps.Cache,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:      voteUseCase,
			Steps:      stepUseCase,
			Promotions: promotionUseCase,
			Queries:    eligibilityQueries,
			Logger:     deps.Logger,
		},
		Cache: deps.Cache,
	}
}

// NewInMemoryModule wires the module against the memory adapter for tests and
// local development.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	cache := ttlcache.New(5 * time.Minute)
	module := NewModule(Dependencies{
		Graphs:      store,
		Votes:       store,
		Methodology: store,
		Events:      store,
		Evidence:    store,
		Challenges:  store,
		Reputation:  store,
		Idempotency: store,
		Tx:          store,
		Cache:       cache,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
