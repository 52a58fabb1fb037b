package models

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Account is the moderated vendor account. Timestamps are unix seconds;
// zero means unset.
type Account struct {
	ID    string `gorm:"column:id;type:text;primaryKey"`
	Email string `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name  string `gorm:"column:name;type:text"`

	Suspended              bool   `gorm:"column:suspended;not null;default:false"`
	SuspensionReason       string `gorm:"column:suspension_reason;type:text"`
	SuspensionDurationDays int    `gorm:"column:suspension_duration_days;not null;default:0"`
	SuspensionStartDate    int64  `gorm:"column:suspension_start_date;not null;default:0"`

	ApprovalStatus  ApprovalStatus `gorm:"column:approval_status;type:text;not null;default:'pending';index"`
	ApprovedBy      string         `gorm:"column:approved_by;type:text"`
	ApprovedAt      int64          `gorm:"column:approved_at;not null;default:0"`
	RejectedBy      string         `gorm:"column:rejected_by;type:text"`
	RejectedAt      int64          `gorm:"column:rejected_at;not null;default:0"`
	RejectionReason string         `gorm:"column:rejection_reason;type:text"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (Account) TableName() string { return "accounts" }
