package models

type SupportChat struct {
	ID          string `gorm:"column:id;type:text;primaryKey"`
	UserEmail   string `gorm:"column:user_email;type:text;not null;index"`
	Topic       string `gorm:"column:topic;type:text"`
	LastMessage string `gorm:"column:last_message;type:text"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (SupportChat) TableName() string { return "support_chats" }

type SupportTicket struct {
	ID        string `gorm:"column:id;type:text;primaryKey"`
	UserEmail string `gorm:"column:user_email;type:text;not null;index"`
	Subject   string `gorm:"column:subject;type:text"`
	Status    string `gorm:"column:status;type:text;not null;default:'open'"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (SupportTicket) TableName() string { return "support_tickets" }
