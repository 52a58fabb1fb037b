package gateway

import (
	"regexp"
	"strings"
	"time"
)

type ActionType string

const (
	ActionSuspend ActionType = "suspend"
	ActionApprove ActionType = "approve"
	ActionDeny    ActionType = "deny"
	ActionNone    ActionType = "none"
)

// ParseActionType maps untrusted inference output onto the closed enum.
// Anything unrecognized collapses to ActionNone rather than passing through.
func ParseActionType(s string) ActionType {
	switch ActionType(strings.ToLower(strings.TrimSpace(s))) {
	case ActionSuspend:
		return ActionSuspend
	case ActionApprove:
		return ActionApprove
	case ActionDeny:
		return ActionDeny
	default:
		return ActionNone
	}
}

// ProposedAction is a moderation instruction inferred from chat, not yet
// executed.
type ProposedAction struct {
	Type         ActionType `json:"action_type"`
	TargetEmail  string     `json:"target_id"`
	Reason       string     `json:"reason,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
}

// ExecutedAction is one Action History entry; only the last entry is
// eligible for undo.
type ExecutedAction struct {
	Type         ActionType `json:"action_type"`
	TargetEmail  string     `json:"target_id"`
	Reason       string     `json:"reason,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
	ExecutedAt   time.Time  `json:"executed_at"`
}

type Turn struct {
	Role string
	Text string
}

// Session holds the per-conversation state: at most one pending action, the
// LIFO action history, and a bounded transcript fed back to inference. Two
// administrators hold two Sessions and never see each other's pending
// confirmations. A pending action has no expiry; it stays until the admin
// resolves it with a yes or a no.
type Session struct {
	Pending    *ProposedAction
	History    []ExecutedAction
	Transcript []Turn
}

func NewSession() *Session { return &Session{} }

func (s *Session) pushHistory(a ExecutedAction) {
	s.History = append(s.History, a)
}

func (s *Session) peekHistory() (ExecutedAction, bool) {
	if len(s.History) == 0 {
		return ExecutedAction{}, false
	}
	return s.History[len(s.History)-1], true
}

func (s *Session) popHistory() (ExecutedAction, bool) {
	a, ok := s.peekHistory()
	if ok {
		s.History = s.History[:len(s.History)-1]
	}
	return a, ok
}

const maxTranscriptTurns = 20

func (s *Session) record(role, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.Transcript = append(s.Transcript, Turn{Role: role, Text: text})
	if len(s.Transcript) > maxTranscriptTurns {
		s.Transcript = s.Transcript[len(s.Transcript)-maxTranscriptTurns:]
	}
}

func (s *Session) historyText() string {
	var sb strings.Builder
	for _, t := range s.Transcript {
		sb.WriteString(t.Role)
		sb.WriteString(": ")
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmailShaped reports whether target identifies exactly one account by
// address shape. Names and free text never pass; this is the gate that keeps
// an inferred action from landing on an ambiguous target.
func IsEmailShaped(target string) bool {
	return emailRe.MatchString(strings.TrimSpace(target))
}

// Confirmation vocabulary. Deliberately a finite whitelist compared after
// normalization; a fuzzier matcher would undermine the audit guarantee.
var (
	confirmWords = map[string]bool{
		"yes":     true,
		"confirm": true,
		"proceed": true,
		"do it":   true,
	}
	cancelWords = map[string]bool{
		"no":         true,
		"cancel":     true,
		"stop":       true,
		"never mind": true,
	}
)

const undoWord = "undo"

func normalizeReply(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, ".!")
}

func isConfirm(s string) bool { return confirmWords[normalizeReply(s)] }
func isCancel(s string) bool  { return cancelWords[normalizeReply(s)] }
func isUndo(s string) bool    { return normalizeReply(s) == undoWord }
