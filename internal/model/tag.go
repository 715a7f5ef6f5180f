package model

// Tag labels celeb profiles ("director", "critic", ...).
type Tag struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string `json:"name" gorm:"type:varchar(64);not null;uniqueIndex"`
	Color       string `json:"color" gorm:"type:varchar(16)"`
	Description string `json:"description" gorm:"type:varchar(255)"`
	SortOrder   int    `json:"sort_order" gorm:"not null;default:0"`
	IsActive    bool   `json:"is_active" gorm:"not null;default:true"`
}

func (Tag) TableName() string { return "celeb_tags" }

// CelebTagAssignment links a celeb profile to a tag.
type CelebTagAssignment struct {
	CelebID string `gorm:"primaryKey;type:varchar(36)"`
	TagID   string `gorm:"primaryKey;type:varchar(36);index"`
}

func (CelebTagAssignment) TableName() string { return "celeb_tag_assignments" }
