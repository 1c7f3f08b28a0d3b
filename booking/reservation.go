package booking

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"foodcourt-api/apperr"
	"foodcourt-api/models"
	"foodcourt-api/statemachine"
)

// CreateRequest carries the validated inputs for a new reservation.
type CreateRequest struct {
	OutletID  uint
	TableID   uint
	StartTime time.Time
	PartySize int
}

// Create books a table for the customer. The overlap check and the insert
// run in the caller's transaction; sqlite admits one writer at a time, so
// two concurrent bookings for the same window serialize and the loser sees
// the winner's reservation in the overlap check.
func Create(tx *gorm.DB, ident models.Identity, req CreateRequest) (*models.Reservation, error) {
	if err := ident.Require(models.RoleCustomer); err != nil {
		return nil, err
	}
	if req.PartySize < models.MinPartySize || req.PartySize > models.MaxPartySize {
		return nil, apperr.Validation(fmt.Sprintf(
			"invalid party size: must be between %d and %d", models.MinPartySize, models.MaxPartySize))
	}
	if req.StartTime.Before(time.Now()) {
		return nil, apperr.Validation("invalid time: reservation start is in the past")
	}

	var outlet models.Outlet
	if err := tx.First(&outlet, req.OutletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("outlet not found")
		}
		return nil, apperr.Internal("failed to load outlet", err)
	}
	if !outlet.IsActive {
		return nil, apperr.Validation("outlet is not active")
	}

	var table models.FoodCourtTable
	err := tx.Where("id = ? AND outlet_id = ?", req.TableID, req.OutletID).
		First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("table not found at this outlet")
		}
		return nil, apperr.Internal("failed to load table", err)
	}
	if req.PartySize > table.Capacity {
		return nil, apperr.Validation(fmt.Sprintf(
			"party size %d exceeds table capacity %d", req.PartySize, table.Capacity))
	}

	end := req.StartTime.Add(models.ReservationDuration)
	conflict, err := FindOverlap(tx, table.ID, req.StartTime, end, 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, slotTaken(conflict)
	}

	reservation := models.Reservation{
		CustomerID: ident.ID,
		OutletID:   req.OutletID,
		TableID:    table.ID,
		StartTime:  req.StartTime,
		EndTime:    end,
		PartySize:  req.PartySize,
		Status:     models.ReservationPending,
		Fee:        models.ReservationFee,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		return nil, apperr.Internal("failed to create reservation", err)
	}
	if err := refreshTableFlag(tx, table.ID, time.Now()); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// fetchReservation loads the reservation inside the caller's transaction so
// the status check and the mutation that follows cannot interleave with a
// concurrent request for the same row.
func fetchReservation(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := tx.First(&reservation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("reservation not found")
		}
		return nil, apperr.Internal("failed to load reservation", err)
	}
	return &reservation, nil
}

// authorize checks the actor may touch the reservation: customers only their
// own, outlets only reservations at their outlet.
func authorize(tx *gorm.DB, ident models.Identity, r *models.Reservation) error {
	switch ident.Role {
	case models.RoleCustomer:
		if r.CustomerID != ident.ID {
			return apperr.Forbidden("this reservation does not belong to you")
		}
	case models.RoleOutlet:
		var outlet models.Outlet
		err := tx.Where("id = ? AND owner_id = ?", r.OutletID, ident.ID).First(&outlet).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Forbidden("this reservation does not belong to your outlet")
			}
			return apperr.Internal("failed to load outlet", err)
		}
	default:
		return apperr.Forbidden("unknown role")
	}
	return nil
}

// Confirm moves the customer's own reservation from pending to confirmed.
func Confirm(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error) {
	if err := ident.Require(models.RoleCustomer); err != nil {
		return nil, err
	}
	return transition(tx, ident, id, models.ReservationConfirmed)
}

// Cancel cancels a pending or confirmed reservation. Canceling frees the
// table implicitly: the overlap set excludes canceled reservations by
// status, and the legacy flag is recomputed in the same transaction.
func Cancel(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error) {
	return transition(tx, ident, id, models.ReservationCanceled)
}

// Transition applies any status change permitted to the actor by the
// reservation state machine.
func Transition(tx *gorm.DB, ident models.Identity, id uint, to models.ReservationStatus) (*models.Reservation, error) {
	return transition(tx, ident, id, to)
}

func transition(tx *gorm.DB, ident models.Identity, id uint, to models.ReservationStatus) (*models.Reservation, error) {
	reservation, err := fetchReservation(tx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(tx, ident, reservation); err != nil {
		return nil, err
	}
	if err := statemachine.CanTransitionReservation(reservation.Status, to, ident.Role); err != nil {
		return nil, err
	}
	reservation.Status = to
	if err := tx.Model(reservation).Update("status", to).Error; err != nil {
		return nil, apperr.Internal("failed to update reservation status", err)
	}
	if err := refreshTableFlag(tx, reservation.TableID, time.Now()); err != nil {
		return nil, err
	}
	return reservation, nil
}

// Reassign moves a live reservation to another table at the same outlet.
// The target table is re-validated over the reservation's existing window,
// excluding the reservation itself. Status is unchanged; the previous table
// number is recorded for audit and customer notification.
func Reassign(tx *gorm.DB, ident models.Identity, id uint, newTableID uint) (*models.Reservation, error) {
	if err := ident.Require(models.RoleOutlet); err != nil {
		return nil, err
	}
	reservation, err := fetchReservation(tx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(tx, ident, reservation); err != nil {
		return nil, err
	}
	if !reservation.Blocking() {
		return nil, apperr.Validation(
			"cannot reassign a " + string(reservation.Status) + " reservation")
	}

	var oldTable models.FoodCourtTable
	if err := tx.First(&oldTable, reservation.TableID).Error; err != nil {
		return nil, apperr.Internal("failed to load current table", err)
	}

	var newTable models.FoodCourtTable
	err = tx.Where("id = ? AND outlet_id = ?", newTableID, reservation.OutletID).
		First(&newTable).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("target table not found at this outlet")
		}
		return nil, apperr.Internal("failed to load target table", err)
	}
	if reservation.PartySize > newTable.Capacity {
		return nil, apperr.Validation(fmt.Sprintf(
			"party size %d exceeds table capacity %d", reservation.PartySize, newTable.Capacity))
	}

	conflict, err := FindOverlap(tx, newTable.ID, reservation.StartTime, reservation.EndTime, reservation.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, slotTaken(conflict)
	}

	previousNumber := oldTable.TableNumber
	reservation.PreviousTableNumber = &previousNumber
	reservation.Reassigned = true
	reservation.TableID = newTable.ID
	err = tx.Model(reservation).Updates(map[string]interface{}{
		"table_id":              newTable.ID,
		"previous_table_number": previousNumber,
		"reassigned":            true,
	}).Error
	if err != nil {
		return nil, apperr.Internal("failed to reassign reservation", err)
	}
	// Both flags flip in the same transaction as the move.
	if err := refreshTableFlag(tx, oldTable.ID, time.Now()); err != nil {
		return nil, err
	}
	if err := refreshTableFlag(tx, newTable.ID, time.Now()); err != nil {
		return nil, err
	}
	return reservation, nil
}
