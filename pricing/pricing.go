// Package pricing validates order lines, computes fixed-point totals,
// consumes reservation-fee discounts, and derives the preparation-time
// estimate. Like booking, it runs inside a caller-owned transaction so a
// consumed discount and the order it pays for commit or roll back together.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"foodcourt-api/apperr"
	"foodcourt-api/models"
)

// ETA heuristic: the slowest line plus a fixed buffer. Not a queueing
// simulation.
const (
	DefaultEtaMinutes = 15
	EtaBufferMinutes  = 12
)

// Line is one requested order line.
type Line struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// Quote is the priced order before persistence. Items carry the price and
// prep-time snapshots to store on the order.
type Quote struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	EtaMinutes  int
	Items       []models.OrderItem
	Reservation *models.Reservation // reservation whose fee was consumed, nil if none
}

// Price validates each line against the outlet's menu, accumulates the
// subtotal in fixed-point decimal, applies at most one reservation-fee
// discount, and computes the ETA. Any per-line failure aborts the whole
// quote; nothing is persisted except the fee-applied flag on the consumed
// reservation, which the caller commits atomically with the order.
func Price(tx *gorm.DB, customerID, outletID uint, lines []Line, reservationID *uint) (*Quote, error) {
	subtotal := decimal.Zero
	maxPrep := 0
	items := make([]models.OrderItem, 0, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.Validation(fmt.Sprintf(
				"invalid quantity %d for menu item %d", line.Quantity, line.MenuItemID))
		}
		var item models.MenuItem
		if err := tx.First(&item, line.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Validation(fmt.Sprintf("menu item %d not found", line.MenuItemID))
			}
			return nil, apperr.Internal("failed to load menu item", err)
		}
		if item.OutletID != outletID {
			return nil, apperr.Validation(
				"menu item '" + item.Name + "' does not belong to this outlet")
		}
		if !item.IsAvailable {
			return nil, apperr.Validation("menu item '" + item.Name + "' is not available")
		}

		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if item.PrepTime > maxPrep {
			maxPrep = item.PrepTime
		}
		items = append(items, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   line.Quantity,
			Price:      item.Price,
			PrepTime:   item.PrepTime,
		})
	}

	discount := decimal.Zero
	reservation, err := consumeFee(tx, customerID, outletID, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation != nil {
		// Clamped so the total never goes negative.
		discount = decimal.Min(reservation.Fee, subtotal)
	}

	eta := DefaultEtaMinutes
	if len(items) > 0 {
		eta = maxPrep + EtaBufferMinutes
	}

	return &Quote{
		Subtotal:    subtotal,
		Discount:    discount,
		Total:       subtotal.Sub(discount),
		EtaMinutes:  eta,
		Items:       items,
		Reservation: reservation,
	}, nil
}

// consumeFee locates the discount-eligible reservation and flips its
// fee-applied flag in the caller's transaction; sqlite serializes writers,
// so two orders racing for the same fee cannot both win. With an explicit id the reservation must be the
// customer's own, at this outlet, confirmed, and unconsumed. Without one,
// the engine auto-locates the customer's same-day confirmed unconsumed
// reservation at this outlet, earliest start time first, lowest id as the
// tie-break. Returns nil when no discount applies.
func consumeFee(tx *gorm.DB, customerID, outletID uint, reservationID *uint) (*models.Reservation, error) {
	var reservation models.Reservation

	if reservationID != nil {
		err := tx.First(&reservation, *reservationID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("reservation not found")
			}
			return nil, apperr.Internal("failed to load reservation", err)
		}
		if reservation.CustomerID != customerID {
			return nil, apperr.Forbidden("this reservation does not belong to you")
		}
		if reservation.OutletID != outletID {
			return nil, apperr.Validation("reservation is for a different outlet")
		}
		if reservation.Status != models.ReservationConfirmed {
			return nil, apperr.Validation("reservation is not confirmed")
		}
		if reservation.FeeApplied {
			return nil, apperr.Conflict("reservation fee has already been applied to an order")
		}
	} else {
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		err := tx.Where("customer_id = ? AND outlet_id = ?", customerID, outletID).
			Where("status = ?", models.ReservationConfirmed).
			Where("fee_applied = ?", false).
			Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
			Order("start_time asc, id asc").
			First(&reservation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil // no eligible reservation, no discount
			}
			return nil, apperr.Internal("failed to look up reservation", err)
		}
	}

	err := tx.Model(&reservation).Update("fee_applied", true).Error
	if err != nil {
		return nil, apperr.Internal("failed to mark reservation fee as applied", err)
	}
	reservation.FeeApplied = true
	return &reservation, nil
}
