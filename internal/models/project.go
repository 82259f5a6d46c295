package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Client       string         `gorm:"type:varchar(255);not null" json:"client"`
	DeliveryDate time.Time      `gorm:"not null" json:"delivery_date"`
	CreatorID    uint64         `gorm:"not null;index" json:"creator_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator       User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Collaborators []User `gorm:"many2many:project_collaborators" json:"collaborators,omitempty"`
	Tasks         []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// HasCollaborator reports whether userID is in the collaborator set.
func (p *Project) HasCollaborator(userID uint64) bool {
	for _, c := range p.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}
