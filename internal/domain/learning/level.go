package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Level struct {
	ID               uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	LevelName        string                       `gorm:"column:level_name;not null;uniqueIndex:idx_level_name" json:"level_name"`
	Title            string                       `gorm:"column:title;not null" json:"title"`
	Description      string                       `gorm:"column:description;type:text;not null" json:"description"`
	LevelOutcome     string                       `gorm:"column:level_outcome;type:text" json:"level_outcome"`
	BannerImage      string                       `gorm:"column:banner_image" json:"banner_image"`
	WhatYouWillLearn datatypes.JSONType[[]string] `gorm:"column:what_you_will_learn" json:"what_you_will_learn"`
	IsFree           bool                         `gorm:"column:is_free;not null" json:"is_free"`
	DisplayOrder     int                          `gorm:"column:display_order;not null;index" json:"display_order"`
	IsActive         bool                         `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt        time.Time                    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                    `gorm:"not null" json:"updated_at"`
}

func (Level) TableName() string { return "level" }

func (l *Level) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Outcomes returns the learning outcomes, never nil.
func (l *Level) Outcomes() []string {
	if out := l.WhatYouWillLearn.Data(); out != nil {
		return out
	}
	return []string{}
}
