package models

type UserReport struct {
	ID            string `gorm:"column:id;type:text;primaryKey"`
	ReporterEmail string `gorm:"column:reporter_email;type:text;not null;index"`
	ReportedEmail string `gorm:"column:reported_email;type:text;not null;index"`
	Reason        string `gorm:"column:reason;type:text"`
	Status        string `gorm:"column:status;type:text;not null;default:'open'"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (UserReport) TableName() string { return "user_reports" }
