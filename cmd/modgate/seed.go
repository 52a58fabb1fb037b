package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gigdesk/modgate/db"
	"github.com/gigdesk/modgate/db/models"
	"github.com/gigdesk/modgate/internal/clifmt"
	"github.com/gigdesk/modgate/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Accounts []struct {
		Email          string `yaml:"email"`
		Name           string `yaml:"name"`
		ApprovalStatus string `yaml:"approval_status"`
		Suspended      bool   `yaml:"suspended"`
	} `yaml:"accounts"`
	VendorProfiles []struct {
		AccountEmail string `yaml:"account_email"`
		DisplayName  string `yaml:"display_name"`
		BusinessName string `yaml:"business_name"`
		City         string `yaml:"city"`
	} `yaml:"vendor_profiles"`
	HelpRequests []struct {
		Title       string `yaml:"title"`
		PosterEmail string `yaml:"poster_email"`
		Status      string `yaml:"status"`
	} `yaml:"help_requests"`
	SupportTickets []struct {
		UserEmail string `yaml:"user_email"`
		Subject   string `yaml:"subject"`
		Status    string `yaml:"status"`
	} `yaml:"support_tickets"`
	UserReports []struct {
		ReporterEmail string `yaml:"reporter_email"`
		ReportedEmail string `yaml:"reported_email"`
		Reason        string `yaml:"reason"`
	} `yaml:"user_reports"`
}

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load a YAML fixture into the record store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read fixture: %w", err)
		}
		var fixture seedFile
		if err := yaml.Unmarshal(raw, &fixture); err != nil {
			return fmt.Errorf("parse fixture: %w", err)
		}

		ctx := cmd.Context()
		gdb, err := db.Open(ctx, dbConfigFromViper())
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		recordStore := store.NewGormStore(gdb)

		now := time.Now().Unix()
		total := 0
		for _, a := range fixture.Accounts {
			status := models.ApprovalStatus(a.ApprovalStatus)
			if status == "" {
				status = models.ApprovalPending
			}
			if _, err := recordStore.CreateAccount(ctx, models.Account{
				Email:          a.Email,
				Name:           a.Name,
				ApprovalStatus: status,
				Suspended:      a.Suspended,
			}); err != nil {
				return fmt.Errorf("seed account %s: %w", a.Email, err)
			}
			total++
		}
		for _, p := range fixture.VendorProfiles {
			row := models.VendorProfile{
				ID: uuid.NewString(), AccountEmail: p.AccountEmail,
				DisplayName: p.DisplayName, BusinessName: p.BusinessName,
				City: p.City, CreatedAt: now, UpdatedAt: now,
			}
			if err := gdb.WithContext(ctx).Create(&row).Error; err != nil {
				return fmt.Errorf("seed profile %s: %w", p.AccountEmail, err)
			}
			total++
		}
		for _, h := range fixture.HelpRequests {
			status := h.Status
			if status == "" {
				status = "open"
			}
			row := models.HelpRequest{
				ID: uuid.NewString(), Title: h.Title, PosterEmail: h.PosterEmail,
				Status: status, CreatedAt: now, UpdatedAt: now,
			}
			if err := gdb.WithContext(ctx).Create(&row).Error; err != nil {
				return fmt.Errorf("seed help request %q: %w", h.Title, err)
			}
			total++
		}
		for _, tk := range fixture.SupportTickets {
			status := tk.Status
			if status == "" {
				status = "open"
			}
			row := models.SupportTicket{
				ID: uuid.NewString(), UserEmail: tk.UserEmail, Subject: tk.Subject,
				Status: status, CreatedAt: now, UpdatedAt: now,
			}
			if err := gdb.WithContext(ctx).Create(&row).Error; err != nil {
				return fmt.Errorf("seed ticket %q: %w", tk.Subject, err)
			}
			total++
		}
		for _, r := range fixture.UserReports {
			row := models.UserReport{
				ID: uuid.NewString(), ReporterEmail: r.ReporterEmail,
				ReportedEmail: r.ReportedEmail, Reason: r.Reason,
				Status: "open", CreatedAt: now, UpdatedAt: now,
			}
			if err := gdb.WithContext(ctx).Create(&row).Error; err != nil {
				return fmt.Errorf("seed report against %s: %w", r.ReportedEmail, err)
			}
			total++
		}

		fmt.Println(clifmt.Success(fmt.Sprintf("seeded %d records", total)))
		return nil
	},
}
