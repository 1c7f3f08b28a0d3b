package statemachine

import (
	"foodcourt-api/apperr"
	"foodcourt-api/models"
)

// OrderTransition defines a valid order state change and who can perform it
type OrderTransition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

// validOrderTransitions is the authoritative order state machine definition
var validOrderTransitions = []OrderTransition{
	// Outlet advances the fulfillment pipeline
	{From: models.OrderPending, To: models.OrderConfirmed, Actor: models.RoleOutlet},
	{From: models.OrderConfirmed, To: models.OrderPreparing, Actor: models.RoleOutlet},
	{From: models.OrderPreparing, To: models.OrderReady, Actor: models.RoleOutlet},
	{From: models.OrderReady, To: models.OrderCompleted, Actor: models.RoleOutlet},
	// Outlet can cancel from any non-terminal state
	{From: models.OrderPending, To: models.OrderCancelled, Actor: models.RoleOutlet},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: models.RoleOutlet},
	{From: models.OrderPreparing, To: models.OrderCancelled, Actor: models.RoleOutlet},
	{From: models.OrderReady, To: models.OrderCancelled, Actor: models.RoleOutlet},
	// Customer can only cancel, and only before preparation starts
	{From: models.OrderPending, To: models.OrderCancelled, Actor: models.RoleCustomer},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: models.RoleCustomer},
}

type orderKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var orderTransitionMap = func() map[orderKey]bool {
	m := make(map[orderKey]bool)
	for _, t := range validOrderTransitions {
		m[orderKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// OrderTransitionsFrom returns all valid next states from a given state
func OrderTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validOrderTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransitionOrder checks if a given actor can move an order between states
func CanTransitionOrder(from, to models.OrderStatus, actor models.UserRole) error {
	if !models.ValidOrderStatus(to) {
		return apperr.Validation("unknown order status '" + string(to) + "'")
	}
	if orderTransitionMap[orderKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return apperr.Validation(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + string(actor) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeOrderFrom(from))
}

func describeOrderFrom(status models.OrderStatus) string {
	nexts := OrderTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// AllOrderTransitions returns the full state machine for documentation
func AllOrderTransitions() []OrderTransition {
	return validOrderTransitions
}
