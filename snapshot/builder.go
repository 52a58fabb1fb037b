package snapshot

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/gigdesk/modgate/db/models"
	"github.com/gigdesk/modgate/internal/strutil"
	"github.com/gigdesk/modgate/store"
)

const (
	DefaultRecentLimit = 8
	DefaultMatchLimit  = 10
	DefaultMaxChars    = 6000
)

// Builder produces bounded, point-in-time summaries of the record store.
// It only reads; a category that fails to read degrades to empty instead of
// aborting the snapshot, since the snapshot grounds advisory inference and
// never the mutation path.
type Builder struct {
	store       store.RecordStore
	logger      *slog.Logger
	recentLimit int
	matchLimit  int
}

type Option func(*Builder)

func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithLimits(recent, match int) Option {
	return func(b *Builder) {
		if recent > 0 {
			b.recentLimit = recent
		}
		if match > 0 {
			b.matchLimit = match
		}
	}
}

func NewBuilder(st store.RecordStore, opts ...Option) *Builder {
	b := &Builder{
		store:       st,
		logger:      slog.Default(),
		recentLimit: DefaultRecentLimit,
		matchLimit:  DefaultMatchLimit,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build reads every category and assembles stats, recent rows, and substring
// matches for the normalized query.
func (b *Builder) Build(ctx context.Context, query string) Snapshot {
	q := strutil.Normalize(query)

	snap := Snapshot{
		Query:   q,
		TakenAt: time.Now().Unix(),
		Recent:  make(map[string][]Record, 7),
		Matches: make(map[string][]Record, 7),
	}

	accounts := readCategory(ctx, b, CategoryAccounts, b.store.Accounts)
	profiles := readCategory(ctx, b, CategoryProfiles, b.store.VendorProfiles)
	requests := readCategory(ctx, b, CategoryHelpRequests, b.store.HelpRequests)
	applications := readCategory(ctx, b, CategoryApplications, b.store.Applications)
	chats := readCategory(ctx, b, CategorySupportChats, b.store.SupportChats)
	tickets := readCategory(ctx, b, CategorySupportTickets, b.store.SupportTickets)
	reports := readCategory(ctx, b, CategoryUserReports, b.store.UserReports)

	snap.Stats = computeStats(accounts, profiles, requests, applications, chats, tickets, reports)

	fillCategory(b, &snap, CategoryAccounts, q, accounts, accountRow, accountSearchText)
	fillCategory(b, &snap, CategoryProfiles, q, profiles, profileRow, profileSearchText)
	fillCategory(b, &snap, CategoryHelpRequests, q, requests, requestRow, requestSearchText)
	fillCategory(b, &snap, CategoryApplications, q, applications, applicationRow, applicationSearchText)
	fillCategory(b, &snap, CategorySupportChats, q, chats, chatRow, chatSearchText)
	fillCategory(b, &snap, CategorySupportTickets, q, tickets, ticketRow, ticketSearchText)
	fillCategory(b, &snap, CategoryUserReports, q, reports, reportRow, reportSearchText)

	return snap
}

func readCategory[T any](ctx context.Context, b *Builder, name string, read func(context.Context) ([]T, error)) []T {
	rows, err := read(ctx)
	if err != nil {
		b.logger.Warn("snapshot category read failed", "category", name, "error", err)
		return nil
	}
	return rows
}

// fillCategory computes recent (creation time descending, first recentLimit)
// and matches (store order preserved, capped at matchLimit) for one category.
func fillCategory[T any](b *Builder, snap *Snapshot, category, q string, rows []T, toRow func(T) Record, searchText func(T) []string) {
	byNewest := make([]T, len(rows))
	copy(byNewest, rows)
	sort.SliceStable(byNewest, func(i, j int) bool {
		return toRow(byNewest[i]).CreatedAt > toRow(byNewest[j]).CreatedAt
	})

	recent := make([]Record, 0, b.recentLimit)
	for _, r := range byNewest {
		if len(recent) >= b.recentLimit {
			break
		}
		recent = append(recent, toRow(r))
	}
	snap.Recent[category] = recent

	matches := make([]Record, 0, b.matchLimit)
	if q != "" {
		for _, r := range rows {
			if len(matches) >= b.matchLimit {
				break
			}
			for _, field := range searchText(r) {
				if strutil.ContainsNormalized(field, q) {
					matches = append(matches, toRow(r))
					break
				}
			}
		}
	}
	snap.Matches[category] = matches
}

func computeStats(
	accounts []models.Account,
	profiles []models.VendorProfile,
	requests []models.HelpRequest,
	applications []models.Application,
	chats []models.SupportChat,
	tickets []models.SupportTicket,
	reports []models.UserReport,
) Stats {
	st := Stats{
		TotalAccounts:     len(accounts),
		TotalProfiles:     len(profiles),
		TotalHelpRequests: len(requests),
		TotalApplications: len(applications),
		TotalSupportChats: len(chats),
		TotalTickets:      len(tickets),
		TotalUserReports:  len(reports),
	}
	for _, a := range accounts {
		if a.Suspended {
			st.SuspendedAccounts++
		}
		switch a.ApprovalStatus {
		case models.ApprovalPending:
			st.PendingAccounts++
		case models.ApprovalApproved:
			st.ApprovedAccounts++
		case models.ApprovalRejected:
			st.RejectedAccounts++
		}
	}
	for _, r := range requests {
		if r.Status == "open" {
			st.OpenHelpRequests++
		}
	}
	for _, tk := range tickets {
		if tk.Status == "open" {
			st.OpenTickets++
		}
	}
	for _, rp := range reports {
		if rp.Status == "open" {
			st.OpenUserReports++
		}
	}
	return st
}

func accountRow(a models.Account) Record {
	return Record{ID: a.ID, Email: a.Email, Name: a.Name, Status: string(a.ApprovalStatus), CreatedAt: a.CreatedAt}
}

func accountSearchText(a models.Account) []string {
	return []string{a.Email, a.Name, a.ID}
}

func profileRow(p models.VendorProfile) Record {
	return Record{ID: p.ID, Email: p.AccountEmail, Name: p.DisplayName, Title: p.BusinessName, CreatedAt: p.CreatedAt}
}

func profileSearchText(p models.VendorProfile) []string {
	return []string{p.AccountEmail, p.DisplayName, p.BusinessName, p.ID}
}

func requestRow(r models.HelpRequest) Record {
	return Record{ID: r.ID, Email: r.PosterEmail, Title: r.Title, Status: r.Status, CreatedAt: r.CreatedAt}
}

func requestSearchText(r models.HelpRequest) []string {
	return []string{r.Title, r.PosterEmail, r.ID}
}

func applicationRow(a models.Application) Record {
	return Record{ID: a.ID, Email: a.ApplicantEmail, Status: a.Status, CreatedAt: a.CreatedAt}
}

func applicationSearchText(a models.Application) []string {
	return []string{a.ApplicantEmail, a.ID}
}

func chatRow(c models.SupportChat) Record {
	return Record{ID: c.ID, Email: c.UserEmail, Title: c.Topic, CreatedAt: c.CreatedAt}
}

func chatSearchText(c models.SupportChat) []string {
	return []string{c.UserEmail, c.Topic, c.ID}
}

func ticketRow(tk models.SupportTicket) Record {
	return Record{ID: tk.ID, Email: tk.UserEmail, Title: tk.Subject, Status: tk.Status, CreatedAt: tk.CreatedAt}
}

func ticketSearchText(tk models.SupportTicket) []string {
	return []string{tk.UserEmail, tk.Subject, tk.ID}
}

func reportRow(r models.UserReport) Record {
	return Record{ID: r.ID, Email: r.ReportedEmail, Title: r.Reason, Status: r.Status, CreatedAt: r.CreatedAt}
}

func reportSearchText(r models.UserReport) []string {
	return []string{r.ReporterEmail, r.ReportedEmail, r.Reason, r.ID}
}
