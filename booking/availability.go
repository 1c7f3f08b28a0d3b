// Package booking owns table availability and the reservation lifecycle.
// Every exported operation runs against the *gorm.DB it is handed — the
// caller opens the transaction and commits or rolls back at a single
// boundary per request.
package booking

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"foodcourt-api/apperr"
	"foodcourt-api/models"
)

// FindOverlap returns the reservation blocking tableID over the half-open
// window [start, end), or nil if the slot is free. Two windows overlap iff
// existing.start < end AND existing.end > start. Only pending and confirmed
// reservations are considered; status is the sole liveness gate, so a
// canceled or completed reservation frees its window immediately.
// excludeID skips the reservation being mutated during a reassignment.
func FindOverlap(tx *gorm.DB, tableID uint, start, end time.Time, excludeID uint) (*models.Reservation, error) {
	var existing models.Reservation
	err := tx.
		Where("table_id = ?", tableID).
		Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Where("start_time < ? AND end_time > ?", end, start).
		Where("id <> ?", excludeID).
		Order("start_time asc").
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("failed to check table availability", err)
	}
	return &existing, nil
}

// slotTaken builds the conflict error identifying the conflicting window.
// The engine never silently picks an alternate slot.
func slotTaken(conflict *models.Reservation) error {
	return apperr.Conflict(fmt.Sprintf(
		"table is already reserved from %s to %s",
		conflict.StartTime.Format(time.RFC3339),
		conflict.EndTime.Format(time.RFC3339)))
}

// refreshTableFlag recomputes the legacy boolean availability flag as a
// derived value: false while any live reservation still holds a future or
// current window on the table. Booking decisions never read this flag.
func refreshTableFlag(tx *gorm.DB, tableID uint, now time.Time) error {
	var blocking int64
	err := tx.Model(&models.Reservation{}).
		Where("table_id = ?", tableID).
		Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Where("end_time > ?", now).
		Count(&blocking).Error
	if err != nil {
		return apperr.Internal("failed to recompute table availability", err)
	}
	err = tx.Model(&models.FoodCourtTable{}).
		Where("id = ?", tableID).
		Update("is_available", blocking == 0).Error
	if err != nil {
		return apperr.Internal("failed to update table availability", err)
	}
	return nil
}
