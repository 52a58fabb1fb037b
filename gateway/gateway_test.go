package gateway

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gigdesk/modgate/db/models"
	"github.com/gigdesk/modgate/notify"
)

// --- in-memory record store ---

type memStore struct {
	accounts map[string]models.Account
	saves    int
	failSave bool
}

func newMemStore(accounts ...models.Account) *memStore {
	m := &memStore{accounts: make(map[string]models.Account)}
	for _, a := range accounts {
		m.accounts[a.Email] = a
	}
	return m
}

func (m *memStore) Accounts(_ context.Context) ([]models.Account, error) {
	out := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}
func (m *memStore) VendorProfiles(_ context.Context) ([]models.VendorProfile, error) {
	return nil, nil
}
func (m *memStore) HelpRequests(_ context.Context) ([]models.HelpRequest, error)     { return nil, nil }
func (m *memStore) Applications(_ context.Context) ([]models.Application, error)     { return nil, nil }
func (m *memStore) SupportChats(_ context.Context) ([]models.SupportChat, error)     { return nil, nil }
func (m *memStore) SupportTickets(_ context.Context) ([]models.SupportTicket, error) { return nil, nil }
func (m *memStore) UserReports(_ context.Context) ([]models.UserReport, error)       { return nil, nil }

func (m *memStore) AccountByEmail(_ context.Context, email string) (models.Account, bool, error) {
	a, ok := m.accounts[email]
	return a, ok, nil
}

func (m *memStore) SaveAccount(_ context.Context, acct models.Account) error {
	if m.failSave {
		return fmt.Errorf("disk on fire")
	}
	m.saves++
	m.accounts[acct.Email] = acct
	return nil
}

func (m *memStore) CreateAccount(_ context.Context, acct models.Account) (models.Account, error) {
	m.accounts[acct.Email] = acct
	return acct, nil
}

// --- scripted inference ---

type scriptInference struct {
	results []Classification
	calls   int
	err     error
}

func (s *scriptInference) Classify(_ context.Context, _ ClassifyInput) (Classification, error) {
	s.calls++
	if s.err != nil {
		return Classification{}, s.err
	}
	if len(s.results) == 0 {
		return Classification{Response: "ok", Intent: "question"}, nil
	}
	r := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return normalizeClassification(r), nil
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Invalidate(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return nil
}

func pendingAlice() models.Account {
	return models.Account{
		ID:             "acct-alice",
		Email:          "alice@x.com",
		Name:           "Alice",
		ApprovalStatus: models.ApprovalPending,
		CreatedAt:      100,
	}
}

func suspendProposal() Classification {
	return Classification{
		Response:          "Suspend alice@x.com for 3 days?",
		Intent:            "action",
		IsAction:          true,
		NeedsConfirmation: true,
		ActionType:        "suspend",
		TargetID:          "alice@x.com",
		Reason:            "chargeback",
		DurationDays:      3,
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// --- scenarios ---

func TestHappyPath_SuspendAfterYes(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	g := New(st, inf, WithClock(fixedClock()))
	sess := NewSession()

	reply, err := g.HandleTurn(context.Background(), sess, "suspend alice@x.com for 3 days, chargeback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.ToLower(reply), "yes") {
		t.Fatalf("proposal must request yes/no, got %q", reply)
	}
	if st.saves != 0 {
		t.Fatal("store must be untouched before confirmation")
	}
	if sess.Pending == nil {
		t.Fatal("expected a pending action")
	}

	if _, err := g.HandleTurn(context.Background(), sess, "yes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acct := st.accounts["alice@x.com"]
	if !acct.Suspended {
		t.Fatal("account not suspended")
	}
	if acct.SuspensionDurationDays != 3 {
		t.Fatalf("duration = %d, want 3", acct.SuspensionDurationDays)
	}
	if acct.SuspensionReason != "chargeback" {
		t.Fatalf("reason = %q", acct.SuspensionReason)
	}
	if acct.SuspensionStartDate != fixedClock()().Unix() {
		t.Fatalf("start date = %d", acct.SuspensionStartDate)
	}
	if len(sess.History) != 1 {
		t.Fatalf("history = %d entries, want 1", len(sess.History))
	}
	if sess.Pending != nil {
		t.Fatal("pending must clear after execution")
	}
}

func TestCancel_LeavesStoreUntouched(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	g := New(st, inf)
	sess := NewSession()

	if _, err := g.HandleTurn(context.Background(), sess, "suspend alice@x.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err := g.HandleTurn(context.Background(), sess, "no")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "Cancelled") {
		t.Fatalf("expected cancel acknowledgement, got %q", reply)
	}
	if st.saves != 0 {
		t.Fatal("cancel must not write")
	}
	if st.accounts["alice@x.com"].Suspended {
		t.Fatal("account mutated after cancel")
	}
	if len(sess.History) != 0 || sess.Pending != nil {
		t.Fatal("session must return to idle with empty history")
	}
}

func TestUndo_CanonicalReset(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	g := New(st, inf, WithClock(fixedClock()))
	sess := NewSession()

	mustTurn(t, g, sess, "suspend alice@x.com")
	mustTurn(t, g, sess, "yes")

	// Arbitrary prior values must not matter: undo restores the baseline.
	acct := st.accounts["alice@x.com"]
	acct.SuspensionReason = "something the admin typed by hand"
	acct.SuspensionDurationDays = 99
	st.accounts["alice@x.com"] = acct

	reply := mustTurn(t, g, sess, "undo")
	if !strings.Contains(reply, "Undone") {
		t.Fatalf("expected undo acknowledgement, got %q", reply)
	}
	acct = st.accounts["alice@x.com"]
	if acct.Suspended {
		t.Fatal("still suspended after undo")
	}
	if acct.SuspensionReason != "" || acct.SuspensionDurationDays != 0 || acct.SuspensionStartDate != 0 {
		t.Fatalf("suspension fields not cleared: %+v", acct)
	}
	if len(sess.History) != 0 {
		t.Fatal("undo must pop the history entry")
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	g := New(newMemStore(), &scriptInference{})
	sess := NewSession()
	reply := mustTurn(t, g, sess, "undo")
	if reply != "Nothing to undo." {
		t.Fatalf("got %q", reply)
	}
}

func TestBadTarget_NeverExecutes(t *testing.T) {
	st := newMemStore(pendingAlice())
	cls := suspendProposal()
	cls.TargetID = "alice" // not email-shaped
	inf := &scriptInference{results: []Classification{cls}}
	g := New(st, inf)
	sess := NewSession()

	reply := mustTurn(t, g, sess, "suspend alice")
	if !strings.Contains(reply, "email") {
		t.Fatalf("expected request for a precise email, got %q", reply)
	}
	if st.saves != 0 {
		t.Fatal("store written for a non-email target")
	}
	if sess.Pending != nil {
		t.Fatal("non-email target must not become pending")
	}
}

func TestAtMostOnePending(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	g := New(st, inf)
	sess := NewSession()

	mustTurn(t, g, sess, "suspend alice@x.com")
	callsAfterProposal := inf.calls

	// A second action-looking turn is interpreted only as confirm/cancel/
	// unclear; inference is never consulted while a pending action exists.
	reply := mustTurn(t, g, sess, "approve bob@x.com")
	if inf.calls != callsAfterProposal {
		t.Fatal("inference must not run while awaiting confirmation")
	}
	if !strings.Contains(strings.ToLower(reply), "yes") {
		t.Fatalf("expected a re-prompt, got %q", reply)
	}
	if sess.Pending == nil || sess.Pending.TargetEmail != "alice@x.com" {
		t.Fatal("pending action must be unchanged")
	}
}

func TestConfirm_TargetVanished_KeepsPending(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	g := New(st, inf)
	sess := NewSession()

	mustTurn(t, g, sess, "suspend alice@x.com")
	delete(st.accounts, "alice@x.com") // race: removed between proposal and confirmation

	reply := mustTurn(t, g, sess, "yes")
	if !strings.Contains(reply, "couldn't find") {
		t.Fatalf("expected not-found message, got %q", reply)
	}
	if sess.Pending == nil {
		t.Fatal("pending action must survive target-not-found")
	}
	if len(sess.History) != 0 {
		t.Fatal("failed execution must not enter history")
	}

	// The admin can still cancel cleanly.
	mustTurn(t, g, sess, "no")
	if sess.Pending != nil {
		t.Fatal("cancel must clear the retained pending action")
	}
}

func TestConfirm_WriteFailure_NoHistory(t *testing.T) {
	st := newMemStore(pendingAlice())
	st.failSave = true
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	g := New(st, inf)
	sess := NewSession()

	mustTurn(t, g, sess, "suspend alice@x.com")
	reply := mustTurn(t, g, sess, "yes")
	if !strings.Contains(reply, "failed") {
		t.Fatalf("write failure must surface in chat, got %q", reply)
	}
	if len(sess.History) != 0 {
		t.Fatal("failed write must not be undoable")
	}
	if st.accounts["alice@x.com"].Suspended {
		t.Fatal("account mutated despite failed save")
	}
}

func TestServiceDeclined_NeverAutoExecutes(t *testing.T) {
	st := newMemStore(pendingAlice())
	cls := suspendProposal()
	cls.NeedsConfirmation = false
	cls.Response = "Two accounts match that description."
	inf := &scriptInference{results: []Classification{cls}}
	g := New(st, inf)
	sess := NewSession()

	reply := mustTurn(t, g, sess, "suspend the plumber account")
	if reply != "Two accounts match that description." {
		t.Fatalf("expected the service message verbatim, got %q", reply)
	}
	if st.saves != 0 || sess.Pending != nil {
		t.Fatal("declined action must neither execute nor queue")
	}
}

func TestApprove_StampsActorAndClearsRejection(t *testing.T) {
	acct := pendingAlice()
	acct.ApprovalStatus = models.ApprovalRejected
	acct.RejectedBy = "old-admin"
	acct.RejectedAt = 42
	acct.RejectionReason = "stale"
	st := newMemStore(acct)

	inf := &scriptInference{results: []Classification{{
		Response:          "Approve alice@x.com?",
		Intent:            "action",
		IsAction:          true,
		NeedsConfirmation: true,
		ActionType:        "approve",
		TargetID:          "alice@x.com",
	}}}
	g := New(st, inf, WithActor("root@ops"), WithClock(fixedClock()))
	sess := NewSession()

	mustTurn(t, g, sess, "approve alice@x.com")
	mustTurn(t, g, sess, "yes")

	got := st.accounts["alice@x.com"]
	if got.ApprovalStatus != models.ApprovalApproved {
		t.Fatalf("status = %s", got.ApprovalStatus)
	}
	if got.ApprovedBy != "root@ops" || got.ApprovedAt != fixedClock()().Unix() {
		t.Fatalf("approval stamp wrong: %+v", got)
	}
	if got.RejectedBy != "" || got.RejectedAt != 0 || got.RejectionReason != "" {
		t.Fatalf("rejection fields not cleared: %+v", got)
	}
}

func TestDeny_ThenUndo_BackToPending(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{{
		Response:          "Deny alice@x.com?",
		Intent:            "action",
		IsAction:          true,
		NeedsConfirmation: true,
		ActionType:        "deny",
		TargetID:          "alice@x.com",
		Reason:            "incomplete documents",
	}}}
	g := New(st, inf, WithClock(fixedClock()))
	sess := NewSession()

	mustTurn(t, g, sess, "deny alice@x.com")
	mustTurn(t, g, sess, "yes")

	got := st.accounts["alice@x.com"]
	if got.ApprovalStatus != models.ApprovalRejected || got.RejectionReason != "incomplete documents" {
		t.Fatalf("deny not applied: %+v", got)
	}

	mustTurn(t, g, sess, "undo")
	got = st.accounts["alice@x.com"]
	if got.ApprovalStatus != models.ApprovalPending {
		t.Fatalf("status after undo = %s, want pending", got.ApprovalStatus)
	}
	if got.RejectedBy != "" || got.RejectedAt != 0 || got.RejectionReason != "" {
		t.Fatalf("rejection audit fields not cleared: %+v", got)
	}
}

func TestSuspend_Defaults(t *testing.T) {
	st := newMemStore(pendingAlice())
	cls := suspendProposal()
	cls.Reason = ""
	cls.DurationDays = 0
	inf := &scriptInference{results: []Classification{cls}}
	g := New(st, inf)
	sess := NewSession()

	mustTurn(t, g, sess, "suspend alice@x.com")
	mustTurn(t, g, sess, "yes")

	got := st.accounts["alice@x.com"]
	if got.SuspensionDurationDays != 7 {
		t.Fatalf("default duration = %d, want 7", got.SuspensionDurationDays)
	}
	if got.SuspensionReason != "Admin action" {
		t.Fatalf("default reason = %q", got.SuspensionReason)
	}
}

func TestConfirmVocabulary(t *testing.T) {
	cases := []struct {
		in      string
		confirm bool
		cancel  bool
	}{
		{"yes", true, false},
		{"Yes.", true, false},
		{"CONFIRM", true, false},
		{"do it", true, false},
		{"proceed", true, false},
		{"no", false, true},
		{"never mind", false, true},
		{"STOP!", false, true},
		{"yeah go ahead", false, false}, // outside the whitelist on purpose
		{"nope", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := isConfirm(tc.in); got != tc.confirm {
				t.Fatalf("isConfirm(%q) = %v", tc.in, got)
			}
			if got := isCancel(tc.in); got != tc.cancel {
				t.Fatalf("isCancel(%q) = %v", tc.in, got)
			}
		})
	}
}

func TestIsEmailShaped(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"alice@x.com", true},
		{"a.b+c@sub.domain.io", true},
		{"alice", false},
		{"alice@x", false},
		{"@x.com", false},
		{"alice @x.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsEmailShaped(tc.in); got != tc.want {
			t.Fatalf("IsEmailShaped(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNotifier_ReceivesExecuteAndUndo(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{results: []Classification{suspendProposal()}}
	rec := &recordingNotifier{}
	g := New(st, inf, WithNotifier(rec))
	sess := NewSession()

	mustTurn(t, g, sess, "suspend alice@x.com")
	mustTurn(t, g, sess, "yes")
	mustTurn(t, g, sess, "undo")

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	if rec.events[0].Op != "execute:suspend" || rec.events[1].Op != "undo:suspend" {
		t.Fatalf("ops = %v", rec.events)
	}
}

func TestInferenceFailure_SurfacesMessage(t *testing.T) {
	st := newMemStore(pendingAlice())
	inf := &scriptInference{err: fmt.Errorf("model offline")}
	g := New(st, inf)
	sess := NewSession()

	reply, err := g.HandleTurn(context.Background(), sess, "what's going on?")
	if err == nil {
		t.Fatal("expected the infrastructure error to be returned")
	}
	if !strings.Contains(reply, "Nothing was changed") {
		t.Fatalf("expected a readable failure message, got %q", reply)
	}
	if st.saves != 0 {
		t.Fatal("inference failure must not write")
	}
}

func mustTurn(t *testing.T, g *Gateway, sess *Session, text string) string {
	t.Helper()
	reply, err := g.HandleTurn(context.Background(), sess, text)
	if err != nil {
		t.Fatalf("HandleTurn(%q) error: %v", text, err)
	}
	return reply
}
