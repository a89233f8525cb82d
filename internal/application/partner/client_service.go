// Package partner implements client registration and lookup.
package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/partner"
)

// ClientService handles client operations
type ClientService struct {
	txScope appshared.TransactionScope
	clock   appshared.Clock
	logger  *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(txScope appshared.TransactionScope, clock appshared.Clock, logger *zap.Logger) *ClientService {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{txScope: txScope, clock: clock, logger: logger}
}

// Create registers a client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, req.Phone, req.CPF, req.Address, req.Notes, s.clock.Now())
	if err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		return repos.Clients().Save(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.String("client_id", client.ID.String()))
	resp := ToClientResponse(client)
	return &resp, nil
}

// Get returns one client
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	var resp ClientResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		client, err := repos.Clients().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToClientResponse(client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List searches clients by name or phone
func (s *ClientService) List(ctx context.Context, q ListClientsQuery) ([]ClientResponse, error) {
	filter := partner.ClientFilter{Query: strings.TrimSpace(q.Q), Window: q.Window()}
	var out []ClientResponse
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		items, err := repos.Clients().List(ctx, filter)
		if err != nil {
			return err
		}
		out = make([]ClientResponse, len(items))
		for i := range items {
			out[i] = ToClientResponse(&items[i])
		}
		return nil
	})
	return out, err
}
