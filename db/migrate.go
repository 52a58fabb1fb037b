package db

import (
	"fmt"

	"github.com/gigdesk/modgate/db/models"
	"gorm.io/gorm"
)

func AutoMigrate(gdb *gorm.DB) error {
	if gdb == nil {
		return fmt.Errorf("nil gorm db")
	}
	return gdb.AutoMigrate(
		&models.Account{},
		&models.VendorProfile{},
		&models.HelpRequest{},
		&models.Application{},
		&models.SupportChat{},
		&models.SupportTicket{},
		&models.UserReport{},
	)
}
