package inquiryservice

import (
	"log/slog"

	httpadapter "veritas/contexts/challenge-resolution/inquiry-service/adapters/http"
	"veritas/contexts/challenge-resolution/inquiry-service/adapters/memory"
	"veritas/contexts/challenge-resolution/inquiry-service/application/commands"
	"veritas/contexts/challenge-resolution/inquiry-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Inquiries   ports.InquiryRepository
	Votes       ports.InquiryVoteRepository
	Credibility ports.CredibilityReader
	Tx          ports.TransactionManager
	Eligibility ports.EligibilityInvalidator
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	confidenceUseCase := commands.ConfidenceUseCase{
		Inquiries:   deps.Inquiries,
		Credibility: deps.Credibility,
		Tx:          deps.Tx,
		Eligibility: deps.Eligibility,
		Publisher:   deps.Publisher,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	voteUseCase := commands.InquiryVoteUseCase{
		Inquiries: deps.Inquiries,
		Votes:     deps.Votes,
		Tx:        deps.Tx,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Confidence: confidenceUseCase,
			Votes:      voteUseCase,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the memory adapter for tests and
// local development.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Inquiries:   store,
		Votes:       store,
		Credibility: store,
		Tx:          store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
