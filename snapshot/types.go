package snapshot

import (
	"encoding/json"

	"github.com/gigdesk/modgate/internal/strutil"
)

// Category names used as keys in Recent and Matches.
const (
	CategoryAccounts       = "accounts"
	CategoryProfiles       = "vendor_profiles"
	CategoryHelpRequests   = "help_requests"
	CategoryApplications   = "applications"
	CategorySupportChats   = "support_chats"
	CategorySupportTickets = "support_tickets"
	CategoryUserReports    = "user_reports"
)

// Stats is the fixed counter set computed over the full store at read time.
type Stats struct {
	TotalAccounts     int `json:"total_accounts"`
	SuspendedAccounts int `json:"suspended_accounts"`
	PendingAccounts   int `json:"pending_accounts"`
	ApprovedAccounts  int `json:"approved_accounts"`
	RejectedAccounts  int `json:"rejected_accounts"`

	TotalProfiles     int `json:"total_profiles"`
	TotalHelpRequests int `json:"total_help_requests"`
	OpenHelpRequests  int `json:"open_help_requests"`
	TotalApplications int `json:"total_applications"`
	TotalSupportChats int `json:"total_support_chats"`
	TotalTickets      int `json:"total_support_tickets"`
	OpenTickets       int `json:"open_support_tickets"`
	TotalUserReports  int `json:"total_user_reports"`
	OpenUserReports   int `json:"open_user_reports"`
}

// Record is the compact cross-category row shape surfaced in Recent and
// Matches. Fields that do not apply to a category stay empty.
type Record struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Snapshot is an ephemeral, point-in-time summary of store state. It is
// built, serialized for the inference prompt, and discarded within one turn.
type Snapshot struct {
	Query   string              `json:"query"`
	TakenAt int64               `json:"taken_at"`
	Stats   Stats               `json:"stats"`
	Recent  map[string][]Record `json:"recent"`
	Matches map[string][]Record `json:"matches"`
}

const trimmedMarker = "…[snapshot trimmed]"

// BoundedJSON serializes the snapshot and enforces the character budget.
// Truncation happens after all structured computation; it never changes
// which records were chosen. The second return reports whether the output
// was trimmed.
func (s Snapshot) BoundedJSON(maxChars int) (string, bool) {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}", false
	}
	out := string(b)
	if maxChars <= 0 || len(out) <= maxChars {
		return out, false
	}
	cut := maxChars - len(trimmedMarker)
	if cut < 0 {
		cut = 0
	}
	return strutil.TruncateUTF8(out, cut) + trimmedMarker, true
}
