package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodcourt-api/apperr"
	"foodcourt-api/config"
	"foodcourt-api/middleware"
	"foodcourt-api/models"
	"foodcourt-api/pricing"
	"foodcourt-api/statemachine"
)

type PlaceOrderRequest struct {
	OutletID      uint           `json:"outlet_id" binding:"required"`
	ReservationID *uint          `json:"reservation_id"`
	Items         []pricing.Line `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates a new order (customer only). Pricing, discount
// consumption, the order row and its items all commit in one transaction —
// any failure rolls the whole thing back.
func PlaceOrder(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var outlet models.Outlet
	if err := config.DB.First(&outlet, req.OutletID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outlet not found"})
		return
	}
	if !outlet.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Outlet is currently closed"})
		return
	}

	var order models.Order
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		quote, err := pricing.Price(tx, ident.ID, req.OutletID, req.Items, req.ReservationID)
		if err != nil {
			return err
		}

		order = models.Order{
			Reference:      uuid.NewString(),
			CustomerID:     ident.ID,
			OutletID:       req.OutletID,
			TotalAmount:    quote.Total,
			DiscountAmount: quote.Discount,
			Status:         models.OrderPending,
			EtaMinutes:     quote.EtaMinutes,
			Items:          quote.Items,
		}
		if quote.Reservation != nil {
			order.ReservationID = &quote.Reservation.ID
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Internal("failed to place order", err)
		}

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.OrderPending,
			ChangedBy: ident.ID,
			Note:      "Order placed by customer",
		}
		if err := tx.Create(&history).Error; err != nil {
			return apperr.Internal("failed to record order history", err)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}

	config.DB.Preload("Items.MenuItem").Preload("Outlet").First(&order, order.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Order placed successfully",
		"order":       order,
		"eta_minutes": order.EtaMinutes,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func GetMyOrders(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	var orders []models.Order
	query := config.DB.Preload("Items.MenuItem").Preload("Outlet").
		Where("customer_id = ?", ident.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func GetOrderDetail(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var order models.Order
	if err := config.DB.
		Preload("Items.MenuItem").
		Preload("Outlet").
		Preload("Reservation").
		Preload("StatusHistory").
		First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != ident.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels an order (customer can cancel pending or confirmed)
func CancelOrder(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != ident.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	if err := statemachine.CanTransitionOrder(order.Status, models.OrderCancelled, ident.Role); err != nil {
		fail(c, err)
		return
	}

	prevStatus := order.Status
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", models.OrderCancelled).Error; err != nil {
			return apperr.Internal("failed to cancel order", err)
		}
		history := models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   models.OrderCancelled,
			ChangedBy:  ident.ID,
			Note:       "Order cancelled by customer",
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}

// ── Outlet side ─────────────────────────────────────────────────────────────

// GetOutletOrders returns all orders at the caller's outlet
func GetOutletOrders(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}

	var orders []models.Order
	query := config.DB.Preload("Items.MenuItem").Preload("Customer").Preload("Reservation").
		Where("outlet_id = ?", outlet.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&orders)

	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"outlet":        outlet.Name,
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus handles the outlet's order state transitions
func UpdateOrderStatus(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.OutletID != outlet.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to your outlet"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanTransitionOrder(order.Status, req.Status, ident.Role); err != nil {
		fail(c, err)
		return
	}

	prevStatus := order.Status
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			return apperr.Internal("failed to update order status", err)
		}
		history := models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   req.Status,
			ChangedBy:  ident.ID,
			Note:       req.Note,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": string(prevStatus),
		"current_status":  string(req.Status),
		"valid_next":      statemachine.OrderTransitionsFrom(req.Status),
	})
}
