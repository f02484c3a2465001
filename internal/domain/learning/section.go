package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Section struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LevelID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_section_level_name,priority:1" json:"level_id"`
	Level        *Level    `gorm:"constraint:OnDelete:CASCADE;foreignKey:LevelID;references:ID" json:"-"`
	Name         string    `gorm:"column:name;not null;uniqueIndex:idx_section_level_name,priority:2" json:"name"`
	DisplayOrder int       `gorm:"column:display_order;not null" json:"display_order"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Section) TableName() string { return "section" }

func (s *Section) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
