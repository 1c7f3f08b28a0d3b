package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a food court order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether the status belongs to the closed set.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Reference  string `json:"reference" gorm:"uniqueIndex;not null"`
	CustomerID uint   `json:"customer_id" gorm:"not null;index"`
	Customer   User   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	OutletID   uint   `json:"outlet_id" gorm:"not null;index"`
	Outlet     Outlet `json:"outlet,omitempty" gorm:"foreignKey:OutletID"`
	// ReservationID links the order to the reservation whose fee it
	// consumed as a discount, when one applied.
	ReservationID *uint        `json:"reservation_id,omitempty"`
	Reservation   *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
	// TotalAmount == sum(item price × qty) − DiscountAmount, always.
	TotalAmount    decimal.Decimal      `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	DiscountAmount decimal.Decimal      `json:"discount_amount" gorm:"type:decimal(10,2);not null"`
	Status         OrderStatus          `json:"status" gorm:"not null;default:'pending'"`
	EtaMinutes     int                  `json:"eta_minutes"`
	Items          []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// OrderItem snapshots name, price and prep-time at order time so later menu
// edits never retroactively change historical orders. Immutable once created.
type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null"`
	MenuItem   MenuItem        `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Name       string          `json:"item_name"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	PrepTime   int             `json:"preparation_time" gorm:"not null"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
