package statemachine

import (
	"foodcourt-api/apperr"
	"foodcourt-api/models"
)

// ReservationTransition defines a valid reservation state change and who can
// perform it
type ReservationTransition struct {
	From  models.ReservationStatus
	To    models.ReservationStatus
	Actor models.UserRole
}

// validReservationTransitions is the authoritative reservation state machine
// definition. Confirmation is customer-initiated (payment flow); the outlet
// fulfills or cancels; the customer may also cancel their own reservation.
var validReservationTransitions = []ReservationTransition{
	{From: models.ReservationPending, To: models.ReservationConfirmed, Actor: models.RoleCustomer},
	{From: models.ReservationPending, To: models.ReservationCanceled, Actor: models.RoleCustomer},
	{From: models.ReservationConfirmed, To: models.ReservationCanceled, Actor: models.RoleCustomer},
	{From: models.ReservationPending, To: models.ReservationCanceled, Actor: models.RoleOutlet},
	{From: models.ReservationConfirmed, To: models.ReservationCanceled, Actor: models.RoleOutlet},
	{From: models.ReservationConfirmed, To: models.ReservationCompleted, Actor: models.RoleOutlet},
}

type reservationKey struct {
	From  models.ReservationStatus
	To    models.ReservationStatus
	Actor models.UserRole
}

var reservationTransitionMap = func() map[reservationKey]bool {
	m := make(map[reservationKey]bool)
	for _, t := range validReservationTransitions {
		m[reservationKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ReservationTransitionsFrom returns all valid next states from a given state
func ReservationTransitionsFrom(status models.ReservationStatus) []models.ReservationStatus {
	var nexts []models.ReservationStatus
	seen := map[models.ReservationStatus]bool{}
	for _, t := range validReservationTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransitionReservation checks if a given actor can move a reservation
// between states
func CanTransitionReservation(from, to models.ReservationStatus, actor models.UserRole) error {
	if !models.ValidReservationStatus(to) {
		return apperr.Validation("unknown reservation status '" + string(to) + "'")
	}
	if reservationTransitionMap[reservationKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return apperr.Validation(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + string(actor) + "'")
}

// AllReservationTransitions returns the full state machine for documentation
func AllReservationTransitions() []ReservationTransition {
	return validReservationTransitions
}
