package models

// HelpRequest is a posted job the marketplace calls a "help request".
type HelpRequest struct {
	ID          string `gorm:"column:id;type:text;primaryKey"`
	Title       string `gorm:"column:title;type:text;not null"`
	PosterEmail string `gorm:"column:poster_email;type:text;not null;index"`
	Status      string `gorm:"column:status;type:text;not null;default:'open'"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (HelpRequest) TableName() string { return "help_requests" }

type Application struct {
	ID             string `gorm:"column:id;type:text;primaryKey"`
	HelpRequestID  string `gorm:"column:help_request_id;type:text;not null;index"`
	ApplicantEmail string `gorm:"column:applicant_email;type:text;not null;index"`
	Status         string `gorm:"column:status;type:text;not null;default:'submitted'"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (Application) TableName() string { return "applications" }
