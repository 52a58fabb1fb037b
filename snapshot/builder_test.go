package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/gigdesk/modgate/db/models"
)

type fakeStore struct {
	accounts []models.Account
	profiles []models.VendorProfile
	requests []models.HelpRequest
	apps     []models.Application
	chats    []models.SupportChat
	tickets  []models.SupportTicket
	reports  []models.UserReport

	failAccounts bool
}

func (f *fakeStore) Accounts(_ context.Context) ([]models.Account, error) {
	if f.failAccounts {
		return nil, fmt.Errorf("accounts unavailable")
	}
	return f.accounts, nil
}
func (f *fakeStore) VendorProfiles(_ context.Context) ([]models.VendorProfile, error) {
	return f.profiles, nil
}
func (f *fakeStore) HelpRequests(_ context.Context) ([]models.HelpRequest, error) {
	return f.requests, nil
}
func (f *fakeStore) Applications(_ context.Context) ([]models.Application, error) {
	return f.apps, nil
}
func (f *fakeStore) SupportChats(_ context.Context) ([]models.SupportChat, error) {
	return f.chats, nil
}
func (f *fakeStore) SupportTickets(_ context.Context) ([]models.SupportTicket, error) {
	return f.tickets, nil
}
func (f *fakeStore) UserReports(_ context.Context) ([]models.UserReport, error) {
	return f.reports, nil
}
func (f *fakeStore) AccountByEmail(_ context.Context, email string) (models.Account, bool, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, true, nil
		}
	}
	return models.Account{}, false, nil
}
func (f *fakeStore) SaveAccount(_ context.Context, _ models.Account) error { return nil }
func (f *fakeStore) CreateAccount(_ context.Context, a models.Account) (models.Account, error) {
	return a, nil
}

func seededStore() *fakeStore {
	f := &fakeStore{}
	for i := 0; i < 12; i++ {
		f.accounts = append(f.accounts, models.Account{
			ID:             fmt.Sprintf("acct-%02d", i),
			Email:          fmt.Sprintf("vendor%02d@x.com", i),
			Name:           fmt.Sprintf("Vendor %02d", i),
			ApprovalStatus: models.ApprovalPending,
			CreatedAt:      int64(1000 + i),
		})
	}
	f.accounts[0].Suspended = true
	f.accounts[1].ApprovalStatus = models.ApprovalApproved
	f.accounts[2].ApprovalStatus = models.ApprovalRejected
	f.requests = append(f.requests,
		models.HelpRequest{ID: "hr-1", Title: "Fix my sink", PosterEmail: "vendor01@x.com", Status: "open", CreatedAt: 500},
		models.HelpRequest{ID: "hr-2", Title: "Paint fence", PosterEmail: "vendor02@x.com", Status: "closed", CreatedAt: 600},
	)
	f.tickets = append(f.tickets,
		models.SupportTicket{ID: "tk-1", UserEmail: "vendor03@x.com", Subject: "Billing", Status: "open", CreatedAt: 700},
	)
	return f
}

func TestBuild_Stats(t *testing.T) {
	b := NewBuilder(seededStore())
	snap := b.Build(context.Background(), "")

	if snap.Stats.TotalAccounts != 12 {
		t.Fatalf("total accounts = %d, want 12", snap.Stats.TotalAccounts)
	}
	if snap.Stats.SuspendedAccounts != 1 {
		t.Fatalf("suspended = %d, want 1", snap.Stats.SuspendedAccounts)
	}
	if snap.Stats.PendingAccounts != 10 {
		t.Fatalf("pending = %d, want 10", snap.Stats.PendingAccounts)
	}
	if snap.Stats.OpenHelpRequests != 1 {
		t.Fatalf("open help requests = %d, want 1", snap.Stats.OpenHelpRequests)
	}
	if snap.Stats.OpenTickets != 1 {
		t.Fatalf("open tickets = %d, want 1", snap.Stats.OpenTickets)
	}
}

func TestBuild_RecentIsNewestFirstAndCapped(t *testing.T) {
	b := NewBuilder(seededStore())
	snap := b.Build(context.Background(), "")

	recent := snap.Recent[CategoryAccounts]
	if len(recent) != DefaultRecentLimit {
		t.Fatalf("recent accounts = %d, want %d", len(recent), DefaultRecentLimit)
	}
	if recent[0].ID != "acct-11" {
		t.Fatalf("newest first, got %s", recent[0].ID)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt > recent[i-1].CreatedAt {
			t.Fatalf("recent not descending at index %d", i)
		}
	}
}

func TestBuild_MatchesNormalizedSubstring(t *testing.T) {
	b := NewBuilder(seededStore())
	snap := b.Build(context.Background(), "  VENDOR01 ")

	matches := snap.Matches[CategoryAccounts]
	if len(matches) != 1 {
		t.Fatalf("account matches = %d, want 1", len(matches))
	}
	if matches[0].Email != "vendor01@x.com" {
		t.Fatalf("matched %s", matches[0].Email)
	}
	// Same query should also match the help request posted by that vendor.
	if len(snap.Matches[CategoryHelpRequests]) != 1 {
		t.Fatalf("help request matches = %d, want 1", len(snap.Matches[CategoryHelpRequests]))
	}
}

func TestBuild_MatchCap(t *testing.T) {
	b := NewBuilder(seededStore())
	snap := b.Build(context.Background(), "vendor")
	if len(snap.Matches[CategoryAccounts]) != DefaultMatchLimit {
		t.Fatalf("matches = %d, want cap %d", len(snap.Matches[CategoryAccounts]), DefaultMatchLimit)
	}
}

func TestBuild_EmptyQueryHasNoMatches(t *testing.T) {
	b := NewBuilder(seededStore())
	snap := b.Build(context.Background(), "   ")
	for cat, m := range snap.Matches {
		if len(m) != 0 {
			t.Fatalf("category %s has %d matches for empty query", cat, len(m))
		}
	}
}

func TestBuild_FailedCategoryDegradesToEmpty(t *testing.T) {
	f := seededStore()
	f.failAccounts = true
	b := NewBuilder(f)
	snap := b.Build(context.Background(), "vendor")

	if snap.Stats.TotalAccounts != 0 {
		t.Fatalf("failed category should count zero, got %d", snap.Stats.TotalAccounts)
	}
	if len(snap.Recent[CategoryAccounts]) != 0 {
		t.Fatal("failed category should have no recent rows")
	}
	// Other categories still populated.
	if snap.Stats.TotalHelpRequests != 2 {
		t.Fatalf("other categories must survive, got %d help requests", snap.Stats.TotalHelpRequests)
	}
}

func TestBuild_DeterministicUnderFixedStore(t *testing.T) {
	b := NewBuilder(seededStore())
	a := b.Build(context.Background(), "vendor01")
	c := b.Build(context.Background(), "vendor01")

	if !reflect.DeepEqual(a.Stats, c.Stats) {
		t.Fatal("stats differ across identical builds")
	}
	aj, _ := json.Marshal(a.Matches)
	cj, _ := json.Marshal(c.Matches)
	if string(aj) != string(cj) {
		t.Fatalf("matches differ:\n%s\n%s", aj, cj)
	}
}

func TestBoundedJSON_Trimming(t *testing.T) {
	b := NewBuilder(seededStore())
	snap := b.Build(context.Background(), "vendor")

	full, trimmed := snap.BoundedJSON(1 << 20)
	if trimmed {
		t.Fatal("should not trim under a generous budget")
	}
	if !json.Valid([]byte(full)) {
		t.Fatal("untrimmed output must be valid JSON")
	}

	small, trimmed := snap.BoundedJSON(200)
	if !trimmed {
		t.Fatal("expected trimming under a tiny budget")
	}
	if len(small) > 200 {
		t.Fatalf("trimmed output %d chars exceeds budget", len(small))
	}
	if !strings.HasSuffix(small, "[snapshot trimmed]") {
		t.Fatalf("missing trimmed marker: %q", small)
	}
}
