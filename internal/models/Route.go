package models

import (
	"time"
)

// Route represents a transit line as stored in the routes table.
// LineNumber is unique ignoring case; the functional index backing that rule
// is created by config.Migrate since gorm tags cannot express it.
type Route struct {
	ID         uint    `gorm:"primaryKey"`
	LineNumber string  `gorm:"size:10;not null;uniqueIndex:uk_routes_line_number"`
	Name       string  `gorm:"size:120;not null"`
	StopsJSON  *string `gorm:"column:stops_json;size:4000"`
	Active     bool    `gorm:"not null;index:idx_routes_active"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Route) TableName() string {
	return "routes"
}
