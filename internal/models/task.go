package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

var priorityAliases = map[string]TaskPriority{
	"low":    PriorityLow,
	"baja":   PriorityLow,
	"medium": PriorityMedium,
	"media":  PriorityMedium,
	"high":   PriorityHigh,
	"alta":   PriorityHigh,
}

// ParsePriority maps an input value, including the Spanish labels used by
// older clients, to a TaskPriority.
func ParsePriority(value string) (TaskPriority, bool) {
	p, ok := priorityAliases[strings.ToLower(strings.TrimSpace(value))]
	return p, ok
}

type Task struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Status        bool           `gorm:"not null;default:false" json:"status"`
	DeliveryDate  time.Time      `gorm:"not null" json:"delivery_date"`
	Priority      TaskPriority   `gorm:"type:varchar(20);not null" json:"priority"`
	ProjectID     uint64         `gorm:"not null;index" json:"project_id"`
	CompletedByID *uint64        `json:"completed_by_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project     Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CompletedBy *User   `gorm:"foreignKey:CompletedByID" json:"completed,omitempty"`
}
