package models

// VendorProfile carries the public-facing business details reviewed during
// moderation. The owning Account (by email) holds the approval decision.
type VendorProfile struct {
	ID           string `gorm:"column:id;type:text;primaryKey"`
	AccountEmail string `gorm:"column:account_email;type:text;not null;index"`
	DisplayName  string `gorm:"column:display_name;type:text"`
	BusinessName string `gorm:"column:business_name;type:text"`
	City         string `gorm:"column:city;type:text"`
	Bio          string `gorm:"column:bio;type:text"`

	CreatedAt int64 `gorm:"column:created_at;not null;index"`
	UpdatedAt int64 `gorm:"column:updated_at;not null"`
}

func (VendorProfile) TableName() string { return "vendor_profiles" }
