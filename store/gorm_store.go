package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gigdesk/modgate/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{DB: gdb}
}

func (s *GormStore) Accounts(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) VendorProfiles(ctx context.Context) ([]models.VendorProfile, error) {
	var rows []models.VendorProfile
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) HelpRequests(ctx context.Context) ([]models.HelpRequest, error) {
	var rows []models.HelpRequest
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) Applications(ctx context.Context) ([]models.Application, error) {
	var rows []models.Application
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) SupportChats(ctx context.Context) ([]models.SupportChat, error) {
	var rows []models.SupportChat
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) SupportTickets(ctx context.Context) ([]models.SupportTicket, error) {
	var rows []models.SupportTicket
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) UserReports(ctx context.Context) ([]models.UserReport, error) {
	var rows []models.UserReport
	if err := s.list(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) list(ctx context.Context, dst any) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("nil gorm store")
	}
	return s.DB.WithContext(ctx).Order("created_at DESC").Find(dst).Error
}

func (s *GormStore) AccountByEmail(ctx context.Context, email string) (models.Account, bool, error) {
	if s == nil || s.DB == nil {
		return models.Account{}, false, fmt.Errorf("nil gorm store")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return models.Account{}, false, nil
	}
	var row models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, false, nil
		}
		return models.Account{}, false, err
	}
	return row, true, nil
}

func (s *GormStore) SaveAccount(ctx context.Context, acct models.Account) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("nil gorm store")
	}
	if strings.TrimSpace(acct.ID) == "" {
		return fmt.Errorf("save account: missing id")
	}
	acct.UpdatedAt = time.Now().Unix()
	// Full-row save so cleared fields (undo) are written as zero values.
	return s.DB.WithContext(ctx).Save(&acct).Error
}

func (s *GormStore) CreateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	if s == nil || s.DB == nil {
		return models.Account{}, fmt.Errorf("nil gorm store")
	}
	acct.Email = strings.TrimSpace(strings.ToLower(acct.Email))
	if acct.Email == "" {
		return models.Account{}, fmt.Errorf("create account: missing email")
	}
	if strings.TrimSpace(acct.ID) == "" {
		acct.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	if acct.CreatedAt == 0 {
		acct.CreatedAt = now
	}
	acct.UpdatedAt = now
	if acct.ApprovalStatus == "" {
		acct.ApprovalStatus = models.ApprovalPending
	}
	if err := s.DB.WithContext(ctx).Create(&acct).Error; err != nil {
		return models.Account{}, err
	}
	return acct, nil
}
