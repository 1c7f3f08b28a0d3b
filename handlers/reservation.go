package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"foodcourt-api/booking"
	"foodcourt-api/config"
	"foodcourt-api/middleware"
	"foodcourt-api/models"
)

type CreateReservationRequest struct {
	OutletID  uint   `json:"outlet_id" binding:"required"`
	TableID   uint   `json:"table_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	PartySize int    `json:"party_size" binding:"required"`
}

// CreateReservation books a table for the logged-in customer
func CreateReservation(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be RFC3339"})
		return
	}

	var reservation *models.Reservation
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		reservation, txErr = booking.Create(tx, ident, booking.CreateRequest{
			OutletID:  req.OutletID,
			TableID:   req.TableID,
			StartTime: start,
			PartySize: req.PartySize,
		})
		return txErr
	})
	if err != nil {
		fail(c, err)
		return
	}

	config.DB.Preload("Table").Preload("Outlet").First(reservation, reservation.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Reservation created",
		"reservation": reservation,
	})
}

// GetMyReservations returns all reservations for the logged-in customer
func GetMyReservations(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	var reservations []models.Reservation
	query := config.DB.Preload("Table").Preload("Outlet").
		Where("customer_id = ?", ident.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("start_time desc").Find(&reservations)
	c.JSON(http.StatusOK, gin.H{"count": len(reservations), "reservations": reservations})
}

// GetReservationDetail returns a single reservation owned by the caller
func GetReservationDetail(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	var reservation models.Reservation
	if err := config.DB.Preload("Table").Preload("Outlet").
		First(&reservation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}
	if reservation.CustomerID != ident.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This reservation does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": reservation})
}

// ConfirmReservation moves the customer's own reservation to confirmed
func ConfirmReservation(c *gin.Context) {
	runReservationTransition(c, func(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error) {
		return booking.Confirm(tx, ident, id)
	}, "Reservation confirmed")
}

// CancelReservation cancels a reservation; the customer for their own, the
// outlet for any at their outlet
func CancelReservation(c *gin.Context) {
	runReservationTransition(c, func(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error) {
		return booking.Cancel(tx, ident, id)
	}, "Reservation canceled")
}

func runReservationTransition(
	c *gin.Context,
	op func(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error),
	message string,
) {
	ident := middleware.GetIdentity(c)
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var reservation *models.Reservation
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		reservation, txErr = op(tx, ident, id)
		return txErr
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "reservation": reservation})
}

// ── Outlet side ─────────────────────────────────────────────────────────────

// GetOutletReservations returns all reservations at the caller's outlet
func GetOutletReservations(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}
	var reservations []models.Reservation
	query := config.DB.Preload("Table").Preload("Customer").
		Where("outlet_id = ?", outlet.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("start_time >= ? AND start_time < ?", day, day.AddDate(0, 0, 1))
	}
	query.Order("start_time asc").Find(&reservations)

	summary := map[string]int{}
	for _, r := range reservations {
		summary[string(r.Status)]++
	}
	c.JSON(http.StatusOK, gin.H{
		"outlet":       outlet.Name,
		"summary":      summary,
		"count":        len(reservations),
		"reservations": reservations,
	})
}

type UpdateReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

// UpdateReservationStatus handles outlet-initiated reservation transitions
// (cancel, complete) through the reservation state machine
func UpdateReservationStatus(c *gin.Context) {
	var req UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	runReservationTransition(c, func(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error) {
		return booking.Transition(tx, ident, id, req.Status)
	}, "Reservation status updated")
}

type ReassignReservationRequest struct {
	TableID uint `json:"table_id" binding:"required"`
}

// ReassignReservation moves a reservation to another table at the outlet,
// recording the previous table number for the customer's notification
func ReassignReservation(c *gin.Context) {
	var req ReassignReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	runReservationTransition(c, func(tx *gorm.DB, ident models.Identity, id uint) (*models.Reservation, error) {
		return booking.Reassign(tx, ident, id, req.TableID)
	}, "Reservation reassigned")
}
