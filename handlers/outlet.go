package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"foodcourt-api/apperr"
	"foodcourt-api/config"
	"foodcourt-api/middleware"
	"foodcourt-api/models"
)

// parsePrice accepts a currency-scale decimal string. Prices go through
// decimal parsing, never float64, to avoid rounding drift.
func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, apperr.Validation("price must be a positive decimal")
	}
	return price, nil
}

// ── Outlet Management ────────────────────────────────────────────────────────

// ownedOutlet loads the outlet owned by the caller, or writes a 404.
func ownedOutlet(c *gin.Context) (*models.Outlet, bool) {
	ident := middleware.GetIdentity(c)
	var outlet models.Outlet
	if err := config.DB.Where("owner_id = ?", ident.ID).First(&outlet).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No outlet found for your account"})
		return nil, false
	}
	return &outlet, true
}

// GetMyOutlet fetches the outlet owned by the logged-in user
func GetMyOutlet(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	var outlet models.Outlet
	if err := config.DB.Preload("MenuItems").Preload("Tables").
		Where("owner_id = ?", ident.ID).First(&outlet).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No outlet found for your account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outlet": outlet})
}

// UpdateOutlet updates outlet details
func UpdateOutlet(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cuisine, ok := req["cuisine"].(string); ok && !models.ValidCuisine(models.CuisineType(cuisine)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cuisine_type"})
		return
	}
	// Only allow safe fields
	allowed := map[string]bool{"name": true, "cuisine": true, "description": true, "image_url": true, "is_active": true}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			update[k] = v
		}
	}
	config.DB.Model(outlet).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Outlet updated", "outlet": outlet})
}

// ── Menu Management ─────────────────────────────────────────────────────────

type CreateMenuItemRequest struct {
	Name        string              `json:"item_name" binding:"required"`
	Description string              `json:"description"`
	Price       string              `json:"price" binding:"required"`
	Category    models.MenuCategory `json:"category" binding:"required"`
	ImageURL    string              `json:"image_url"`
	PrepTime    int                 `json:"preparation_time"`
}

// AddMenuItem adds a new item to the outlet's menu
func AddMenuItem(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}

	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		fail(c, err)
		return
	}
	if !models.ValidMenuCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	if req.PrepTime < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preparation_time must not be negative"})
		return
	}
	prep := req.PrepTime
	if prep == 0 {
		prep = 15
	}

	item := models.MenuItem{
		OutletID:    outlet.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		PrepTime:    prep,
		IsAvailable: true,
	}
	if err := config.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add menu item"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem updates a menu item (only by the owner)
func UpdateMenuItem(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	var item models.MenuItem
	if err := config.DB.First(&item, itemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if item.OutletID != outlet.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this menu item"})
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if price, ok := req["price"].(string); ok {
		parsed, err := parsePrice(price)
		if err != nil {
			fail(c, err)
			return
		}
		req["price"] = parsed
	}
	if category, ok := req["category"].(string); ok && !models.ValidMenuCategory(models.MenuCategory(category)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	allowed := map[string]bool{
		"item_name": true, "name": true, "description": true, "category": true,
		"price": true, "image_url": true, "is_available": true, "preparation_time": true,
	}
	update := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			if k == "item_name" {
				k = "name"
			}
			if k == "preparation_time" {
				k = "prep_time"
			}
			update[k] = v
		}
	}
	config.DB.Model(&item).Updates(update)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

// DeleteMenuItem removes a menu item
func DeleteMenuItem(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	var item models.MenuItem
	if err := config.DB.First(&item, itemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	if item.OutletID != outlet.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this menu item"})
		return
	}
	config.DB.Delete(&item)
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// ── Table Management ────────────────────────────────────────────────────────

type CreateTableRequest struct {
	TableNumber int `json:"table_number" binding:"required,min=1"`
	Capacity    int `json:"capacity" binding:"required,min=1"`
}

// AddTable registers a new table at the outlet. Table numbers are unique per
// outlet; a duplicate is a conflict, not a silent replacement.
func AddTable(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.FoodCourtTable
	err := config.DB.Where("outlet_id = ? AND table_number = ?", outlet.ID, req.TableNumber).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Table number already exists at this outlet"})
		return
	} else if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check table number"})
		return
	}

	table := models.FoodCourtTable{
		OutletID:    outlet.ID,
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		IsAvailable: true,
	}
	if err := config.DB.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Table created", "table": table})
}

// ListTables returns the outlet's tables. With ?start=RFC3339 the response
// also reports whether each table is free for the one-hour window starting
// there, computed from live reservation overlap rather than the cached flag.
func ListTables(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}
	var tables []models.FoodCourtTable
	config.DB.Where("outlet_id = ?", outlet.ID).Order("table_number asc").Find(&tables)

	startParam := c.Query("start")
	if startParam == "" {
		c.JSON(http.StatusOK, gin.H{"count": len(tables), "tables": tables})
		return
	}
	start, err := time.Parse(time.RFC3339, startParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
		return
	}
	end := start.Add(models.ReservationDuration)

	type tableWindow struct {
		models.FoodCourtTable
		FreeForWindow bool `json:"free_for_window"`
	}
	result := make([]tableWindow, 0, len(tables))
	for _, t := range tables {
		var blocking int64
		config.DB.Model(&models.Reservation{}).
			Where("table_id = ?", t.ID).
			Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
			Where("start_time < ? AND end_time > ?", end, start).
			Count(&blocking)
		result = append(result, tableWindow{FoodCourtTable: t, FreeForWindow: blocking == 0})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(result), "tables": result, "window_start": start, "window_end": end})
}
