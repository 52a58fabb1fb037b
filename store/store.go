package store

import (
	"context"

	"github.com/gigdesk/modgate/db/models"
)

// RecordStore is the read/write surface the snapshot builder and the action
// gateway depend on. List methods return whole categories ordered newest
// first; callers that need a bound apply it themselves.
type RecordStore interface {
	Accounts(ctx context.Context) ([]models.Account, error)
	VendorProfiles(ctx context.Context) ([]models.VendorProfile, error)
	HelpRequests(ctx context.Context) ([]models.HelpRequest, error)
	Applications(ctx context.Context) ([]models.Application, error)
	SupportChats(ctx context.Context) ([]models.SupportChat, error)
	SupportTickets(ctx context.Context) ([]models.SupportTicket, error)
	UserReports(ctx context.Context) ([]models.UserReport, error)

	AccountByEmail(ctx context.Context, email string) (models.Account, bool, error)
	SaveAccount(ctx context.Context, acct models.Account) error
	CreateAccount(ctx context.Context, acct models.Account) (models.Account, error)
}
