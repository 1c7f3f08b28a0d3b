package models

import "time"

// FoodCourtTable is a bookable table belonging to one outlet.
//
// IsAvailable is a legacy coarse flag kept for clients that read it. The
// overlap check over reservation windows is the single source of truth for
// booking decisions; the flag is recomputed alongside every reservation
// mutation and never consulted when deciding one.
type FoodCourtTable struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OutletID    uint      `json:"outlet_id" gorm:"not null;index;uniqueIndex:idx_outlet_table_number"`
	TableNumber int       `json:"table_number" gorm:"not null;uniqueIndex:idx_outlet_table_number"`
	Capacity    int       `json:"capacity" gorm:"not null"`
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
