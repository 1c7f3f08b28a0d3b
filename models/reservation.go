package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus represents all possible states of a table reservation
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCanceled  ReservationStatus = "canceled"
	ReservationCompleted ReservationStatus = "completed"
)

// ValidReservationStatus reports whether the status belongs to the closed set.
func ValidReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCanceled, ReservationCompleted:
		return true
	}
	return false
}

// Reservation window and party size bounds.
const (
	ReservationDuration = time.Hour
	MinPartySize        = 1
	MaxPartySize        = 6
)

// ReservationFee is the flat charge for holding a table, creditable once
// against a subsequent order's total.
var ReservationFee = decimal.NewFromInt(5)

// Reservation holds a table for a customer over a [StartTime, EndTime)
// window. Only pending and confirmed reservations block the table; canceled
// and completed ones are excluded from overlap checks by status alone.
type Reservation struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	CustomerID uint              `json:"customer_id" gorm:"not null;index"`
	Customer   User              `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	OutletID   uint              `json:"outlet_id" gorm:"not null;index"`
	Outlet     Outlet            `json:"outlet,omitempty" gorm:"foreignKey:OutletID"`
	TableID    uint              `json:"table_id" gorm:"not null;index"`
	Table      FoodCourtTable    `json:"table,omitempty" gorm:"foreignKey:TableID"`
	StartTime  time.Time         `json:"start_time" gorm:"not null;index"`
	EndTime    time.Time         `json:"end_time" gorm:"not null"`
	PartySize  int               `json:"party_size" gorm:"not null"`
	Status     ReservationStatus `json:"status" gorm:"not null;default:'pending'"`
	Fee        decimal.Decimal   `json:"fee" gorm:"type:decimal(10,2);not null"`
	// FeeApplied flips exactly once, in the same transaction as the order
	// that consumes the fee as a discount.
	FeeApplied bool `json:"fee_applied" gorm:"default:false"`
	// Reassignment audit fields, set by outlet-initiated table moves.
	PreviousTableNumber *int      `json:"previous_table_number,omitempty"`
	Reassigned          bool      `json:"reassigned" gorm:"default:false"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Blocking reports whether the reservation occupies its table's window.
func (r *Reservation) Blocking() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}
