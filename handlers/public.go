package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcourt-api/config"
	"foodcourt-api/models"
	"foodcourt-api/statemachine"
)

// ListOutlets returns all active outlets (public)
func ListOutlets(c *gin.Context) {
	var outlets []models.Outlet
	query := config.DB.Where("is_active = ?", true)

	if cuisine := c.Query("cuisine"); cuisine != "" {
		query = query.Where("cuisine = ?", cuisine)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	query.Find(&outlets)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(outlets),
		"outlets": outlets,
	})
}

// GetOutlet returns a single outlet with its menu
func GetOutlet(c *gin.Context) {
	var outlet models.Outlet
	if err := config.DB.Preload("MenuItems").Preload("Tables").First(&outlet, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outlet not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outlet": outlet})
}

// GetOutletMenu returns the menu for a specific outlet (public)
func GetOutletMenu(c *gin.Context) {
	outletID := c.Param("id")
	var outlet models.Outlet
	if err := config.DB.First(&outlet, outletID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outlet not found"})
		return
	}

	var items []models.MenuItem
	query := config.DB.Where("outlet_id = ?", outletID)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if avail := c.Query("is_available"); avail == "true" {
		query = query.Where("is_available = ?", true)
	}
	query.Find(&items)

	c.JSON(http.StatusOK, gin.H{
		"outlet_id":   outlet.ID,
		"outlet_name": outlet.Name,
		"count":       len(items),
		"menu":        items,
	})
}

// GetOutletCategories returns the distinct menu categories of an outlet
func GetOutletCategories(c *gin.Context) {
	outletID := c.Param("id")
	var outlet models.Outlet
	if err := config.DB.First(&outlet, outletID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Outlet not found"})
		return
	}

	var categories []string
	config.DB.Model(&models.MenuItem{}).
		Where("outlet_id = ?", outletID).
		Distinct("category").
		Pluck("category", &categories)

	c.JSON(http.StatusOK, gin.H{
		"outlet_id":   outlet.ID,
		"outlet_name": outlet.Name,
		"categories":  categories,
	})
}

// GetMenuItem returns a single menu item (public)
func GetMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := config.DB.First(&item, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// GetStateMachineInfo returns both transition tables for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	orders := []gin.H{}
	for _, t := range statemachine.AllOrderTransitions() {
		orders = append(orders, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	reservations := []gin.H{}
	for _, t := range statemachine.AllReservationTransitions() {
		reservations = append(reservations, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"order_state_machine":       orders,
		"reservation_state_machine": reservations,
		"order_terminal_states":     []models.OrderStatus{models.OrderCompleted, models.OrderCancelled},
	})
}
