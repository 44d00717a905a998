package cdn

import "time"

// Resource is an uploaded image stored in the object store.
type Resource struct {
	ResourceID  string    `gorm:"column:resource_id;primaryKey;size:36"`
	ObjectName  string    `gorm:"column:object_name;size:255;not null"`
	Filename    string    `gorm:"column:filename;size:255"`
	ContentType string    `gorm:"column:content_type;size:64"`
	ExternalURL string    `gorm:"column:external_url;size:2048"`
	Tag         string    `gorm:"column:tag;size:32;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (Resource) TableName() string {
	return "image_resources"
}
