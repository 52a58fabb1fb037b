package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigdesk/modgate/db/models"
	"github.com/gigdesk/modgate/notify"
	"github.com/gigdesk/modgate/snapshot"
	"github.com/gigdesk/modgate/store"
)

var (
	ErrTargetNotFound    = errors.New("target account not found")
	ErrUnsupportedAction = errors.New("unsupported action type")
)

const (
	defaultSuspensionDays   = 7
	defaultReason           = "Admin action"
	defaultSnapshotMaxChars = snapshot.DefaultMaxChars
)

// Gateway mediates every privileged moderation mutation. It is stateless and
// safe to share; all conversational state lives in the Session the caller
// passes to HandleTurn.
type Gateway struct {
	store    store.RecordStore
	infer    Inference
	builder  *snapshot.Builder
	notifier notify.Notifier
	audit    *JSONLAuditSink
	logger   *slog.Logger
	actor    string
	now      func() time.Time

	snapshotMaxChars int
}

type Option func(*Gateway)

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(g *Gateway) {
		if n != nil {
			g.notifier = n
		}
	}
}

func WithAudit(sink *JSONLAuditSink) Option {
	return func(g *Gateway) { g.audit = sink }
}

// WithActor sets the administrator identity stamped into approval and
// rejection audit fields.
func WithActor(actor string) Option {
	return func(g *Gateway) {
		if actor != "" {
			g.actor = actor
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

func WithSnapshotMaxChars(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.snapshotMaxChars = n
		}
	}
}

func New(st store.RecordStore, infer Inference, opts ...Option) *Gateway {
	g := &Gateway{
		store:            st,
		infer:            infer,
		notifier:         notify.Noop{},
		logger:           slog.Default(),
		actor:            "admin",
		now:              time.Now,
		snapshotMaxChars: defaultSnapshotMaxChars,
	}
	for _, o := range opts {
		o(g)
	}
	g.builder = snapshot.NewBuilder(st, snapshot.WithLogger(g.logger))
	return g
}

// HandleTurn runs one chat turn through the state machine and returns the
// assistant reply. Every failure path yields a human-readable reply; the
// error return is reserved for infrastructure faults the caller may want to
// log, and is always accompanied by a reply.
//
// Order of checks is load-bearing: an outstanding confirmation consumes the
// turn before undo, and undo before inference, so no phrasing can smuggle a
// new proposal past a pending one.
func (g *Gateway) HandleTurn(ctx context.Context, sess *Session, userText string) (string, error) {
	sess.record("admin", userText)

	if sess.Pending != nil {
		reply, err := g.resolvePending(ctx, sess, userText)
		sess.record("assistant", reply)
		return reply, err
	}

	if isUndo(userText) {
		reply, err := g.performUndo(ctx, sess)
		sess.record("assistant", reply)
		return reply, err
	}

	reply, err := g.classifyAndPropose(ctx, sess, userText)
	sess.record("assistant", reply)
	return reply, err
}

// resolvePending interprets the turn strictly as confirm/cancel/unclear,
// regardless of what it appears to say.
func (g *Gateway) resolvePending(ctx context.Context, sess *Session, userText string) (string, error) {
	pending := *sess.Pending

	switch {
	case isCancel(userText):
		sess.Pending = nil
		g.logger.Info("pending action cancelled", "action", pending.Type, "target", pending.TargetEmail)
		return fmt.Sprintf("Cancelled — no changes were made to %s.", pending.TargetEmail), nil

	case isConfirm(userText):
		err := g.execute(ctx, sess, pending)
		switch {
		case errors.Is(err, ErrTargetNotFound):
			// Keep the proposal so the admin can correct the record and
			// retry instead of losing it to a read race.
			return fmt.Sprintf("I couldn't find an account for %s — it may have just been removed. "+
				"The action is still pending: reply yes to retry or no to cancel.", pending.TargetEmail), nil
		case err != nil:
			return fmt.Sprintf("The %s on %s failed and was not applied: %v. "+
				"It is still pending: reply yes to retry or no to cancel.", pending.Type, pending.TargetEmail, err), nil
		}
		sess.Pending = nil
		return g.describeExecuted(pending), nil

	default:
		return fmt.Sprintf("I still need a clear answer before touching %s: reply yes to %s this account, or no to cancel.",
			pending.TargetEmail, pending.Type), nil
	}
}

func (g *Gateway) classifyAndPropose(ctx context.Context, sess *Session, userText string) (string, error) {
	snap := g.builder.Build(ctx, userText)
	snapJSON, trimmed := snap.BoundedJSON(g.snapshotMaxChars)
	if trimmed {
		g.logger.Debug("snapshot trimmed to budget", "max_chars", g.snapshotMaxChars)
	}

	cls, err := g.infer.Classify(ctx, ClassifyInput{
		History:      sess.historyText(),
		Message:      userText,
		SnapshotJSON: snapJSON,
	})
	if err != nil {
		g.logger.Error("intent classification failed", "error", err)
		return "I couldn't analyze that message right now. Nothing was changed — please try again.", err
	}

	actionType := ParseActionType(cls.ActionType)
	if !cls.IsAction || actionType == ActionNone {
		if cls.Response == "" {
			return "I didn't find anything actionable in that. Ask me about accounts, or name one by email.", nil
		}
		return cls.Response, nil
	}

	if !IsEmailShaped(cls.TargetID) {
		// The single most dangerous failure mode: acting on a name that could
		// match several accounts. Refuse to propose.
		return fmt.Sprintf("I won't %s an account without an exact email address. "+
			"Which account do you mean? Please give me the full email.", actionType), nil
	}

	if !cls.NeedsConfirmation {
		// The service itself declined to proceed (ambiguity, safety). Its
		// message is surfaced; nothing is ever auto-executed on this path.
		if cls.Response == "" {
			return "That action looked ambiguous, so I did not queue it. Please be more specific.", nil
		}
		return cls.Response, nil
	}

	sess.Pending = &ProposedAction{
		Type:         actionType,
		TargetEmail:  cls.TargetID,
		Reason:       cls.Reason,
		DurationDays: cls.DurationDays,
	}
	g.logger.Info("action proposed", "action", actionType, "target", cls.TargetID)

	prompt := cls.Response
	if prompt == "" {
		prompt = fmt.Sprintf("I'm ready to %s %s.", actionType, cls.TargetID)
	}
	return prompt + " Reply yes to proceed or no to cancel.", nil
}

// execute applies a validated action to the record store and, on success,
// appends it to the session history and fans out best-effort side channels.
func (g *Gateway) execute(ctx context.Context, sess *Session, a ProposedAction) error {
	acct, ok, err := g.store.AccountByEmail(ctx, a.TargetEmail)
	if err != nil {
		return fmt.Errorf("look up %s: %w", a.TargetEmail, err)
	}
	if !ok {
		return ErrTargetNotFound
	}

	now := g.now()
	switch a.Type {
	case ActionSuspend:
		days := a.DurationDays
		if days <= 0 {
			days = defaultSuspensionDays
		}
		reason := a.Reason
		if reason == "" {
			reason = defaultReason
		}
		acct.Suspended = true
		acct.SuspensionDurationDays = days
		acct.SuspensionStartDate = now.Unix()
		acct.SuspensionReason = reason
	case ActionApprove:
		acct.ApprovalStatus = models.ApprovalApproved
		acct.ApprovedBy = g.actor
		acct.ApprovedAt = now.Unix()
		acct.RejectedBy = ""
		acct.RejectedAt = 0
		acct.RejectionReason = ""
	case ActionDeny:
		reason := a.Reason
		if reason == "" {
			reason = defaultReason
		}
		acct.ApprovalStatus = models.ApprovalRejected
		acct.RejectedBy = g.actor
		acct.RejectedAt = now.Unix()
		acct.RejectionReason = reason
		acct.ApprovedBy = ""
		acct.ApprovedAt = 0
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedAction, a.Type)
	}

	if err := g.store.SaveAccount(ctx, acct); err != nil {
		return fmt.Errorf("save %s: %w", a.TargetEmail, err)
	}

	sess.pushHistory(ExecutedAction{
		Type:         a.Type,
		TargetEmail:  a.TargetEmail,
		Reason:       a.Reason,
		DurationDays: a.DurationDays,
		ExecutedAt:   now,
	})
	g.sideEffects(ctx, "execute", a.Type, a.TargetEmail, a.Reason, a.DurationDays)
	return nil
}

// performUndo reverses the most recent executed action with a canonical
// reset: the target returns to the baseline for that action's category, not
// to captured prior values. Undo is only meaningful immediately after the
// action it reverses and is not safe to chain.
func (g *Gateway) performUndo(ctx context.Context, sess *Session) (string, error) {
	last, ok := sess.peekHistory()
	if !ok {
		return "Nothing to undo.", nil
	}

	acct, found, err := g.store.AccountByEmail(ctx, last.TargetEmail)
	if err != nil {
		return fmt.Sprintf("Undo failed and nothing was changed: %v", err), nil
	}
	if !found {
		return fmt.Sprintf("I couldn't undo the %s: account %s no longer exists.", last.Type, last.TargetEmail), nil
	}

	switch last.Type {
	case ActionSuspend:
		acct.Suspended = false
		acct.SuspensionReason = ""
		acct.SuspensionDurationDays = 0
		acct.SuspensionStartDate = 0
	case ActionApprove:
		acct.ApprovalStatus = models.ApprovalPending
		acct.ApprovedBy = ""
		acct.ApprovedAt = 0
	case ActionDeny:
		acct.ApprovalStatus = models.ApprovalPending
		acct.RejectedBy = ""
		acct.RejectedAt = 0
		acct.RejectionReason = ""
	default:
		return fmt.Sprintf("I don't know how to undo a %s.", last.Type), nil
	}

	if err := g.store.SaveAccount(ctx, acct); err != nil {
		return fmt.Sprintf("Undo failed and nothing was changed: %v", err), nil
	}

	sess.popHistory()
	g.sideEffects(ctx, "undo", last.Type, last.TargetEmail, "", 0)
	g.logger.Info("action undone", "action", last.Type, "target", last.TargetEmail)
	return fmt.Sprintf("Undone — %s is back to its baseline state for %s.", last.TargetEmail, last.Type), nil
}

// sideEffects fans out the fire-and-forget channels: cache invalidation and
// the audit trail. Neither may fail the action.
func (g *Gateway) sideEffects(ctx context.Context, kind string, action ActionType, target, reason string, days int) {
	if err := g.notifier.Invalidate(ctx, notify.Event{
		Category: "accounts",
		ID:       target,
		Op:       kind + ":" + string(action),
	}); err != nil {
		g.logger.Warn("invalidation notify failed", "target", target, "error", err)
	}
	if g.audit != nil {
		e := AuditEvent{
			Timestamp:    g.now().UTC(),
			Actor:        g.actor,
			Kind:         kind,
			ActionType:   action,
			TargetEmail:  target,
			Reason:       reason,
			DurationDays: days,
			Outcome:      "ok",
		}
		if err := g.audit.Emit(ctx, e); err != nil {
			g.logger.Warn("audit emit failed", "error", err)
		}
	}
}

func (g *Gateway) describeExecuted(a ProposedAction) string {
	switch a.Type {
	case ActionSuspend:
		days := a.DurationDays
		if days <= 0 {
			days = defaultSuspensionDays
		}
		return fmt.Sprintf("Done — %s is suspended for %d days. Say \"undo\" to reverse this.", a.TargetEmail, days)
	case ActionApprove:
		return fmt.Sprintf("Done — %s is approved. Say \"undo\" to reverse this.", a.TargetEmail)
	case ActionDeny:
		return fmt.Sprintf("Done — %s was denied. Say \"undo\" to reverse this.", a.TargetEmail)
	default:
		return "Done."
	}
}
