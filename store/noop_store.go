package store

import (
	"context"

	"github.com/gigdesk/modgate/db/models"
)

// NoopStore satisfies RecordStore with empty reads and accepted-but-dropped
// writes. Useful when the chat loop is wired without a database.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) Accounts(_ context.Context) ([]models.Account, error)             { return nil, nil }
func (s *NoopStore) VendorProfiles(_ context.Context) ([]models.VendorProfile, error) { return nil, nil }
func (s *NoopStore) HelpRequests(_ context.Context) ([]models.HelpRequest, error)     { return nil, nil }
func (s *NoopStore) Applications(_ context.Context) ([]models.Application, error)     { return nil, nil }
func (s *NoopStore) SupportChats(_ context.Context) ([]models.SupportChat, error)     { return nil, nil }
func (s *NoopStore) SupportTickets(_ context.Context) ([]models.SupportTicket, error) { return nil, nil }
func (s *NoopStore) UserReports(_ context.Context) ([]models.UserReport, error)       { return nil, nil }

func (s *NoopStore) AccountByEmail(_ context.Context, _ string) (models.Account, bool, error) {
	return models.Account{}, false, nil
}

func (s *NoopStore) SaveAccount(_ context.Context, _ models.Account) error { return nil }

func (s *NoopStore) CreateAccount(_ context.Context, acct models.Account) (models.Account, error) {
	return acct, nil
}
