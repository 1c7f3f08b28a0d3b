package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"foodcourt-api/config"
	"foodcourt-api/models"
)

// GetAnalyticsOverview aggregates order counts and revenue for the caller's
// outlet: all time and today. Revenue is computed from order item snapshots
// (price × quantity) joined through menu items, excluding cancelled orders,
// summed in fixed-point decimal.
func GetAnalyticsOverview(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var totalOrders, ordersToday int64
	config.DB.Model(&models.Order{}).
		Where("outlet_id = ?", outlet.ID).
		Where("status <> ?", models.OrderCancelled).
		Count(&totalOrders)
	config.DB.Model(&models.Order{}).
		Where("outlet_id = ?", outlet.ID).
		Where("status <> ?", models.OrderCancelled).
		Where("created_at >= ?", todayStart).
		Count(&ordersToday)

	totalRevenue := outletRevenue(outlet.ID, time.Time{})
	revenueToday := outletRevenue(outlet.ID, todayStart)

	c.JSON(http.StatusOK, gin.H{
		"outlet":        outlet.Name,
		"total_orders":  totalOrders,
		"total_revenue": totalRevenue,
		"orders_today":  ordersToday,
		"revenue_today": revenueToday,
	})
}

// outletRevenue sums price × quantity over order items belonging to the
// outlet's menu, for orders created at or after since (zero time = all).
// Rows are summed in Go with decimal so no float arithmetic touches money.
func outletRevenue(outletID uint, since time.Time) decimal.Decimal {
	type row struct {
		Price    decimal.Decimal
		Quantity int
	}
	var rows []row
	query := config.DB.Model(&models.OrderItem{}).
		Select("order_items.price, order_items.quantity").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("menu_items.outlet_id = ?", outletID).
		Where("orders.status <> ?", models.OrderCancelled)
	if !since.IsZero() {
		query = query.Where("orders.created_at >= ?", since)
	}
	query.Scan(&rows)

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Price.Mul(decimal.NewFromInt(int64(r.Quantity))))
	}
	return total
}

// GetTopItems returns the outlet's best sellers by quantity sold
func GetTopItems(c *gin.Context) {
	outlet, ok := ownedOutlet(c)
	if !ok {
		return
	}

	type itemRow struct {
		MenuItemID uint   `json:"menu_item_id"`
		Name       string `json:"item_name"`
		Sold       int    `json:"sold"`
	}
	var rows []itemRow
	config.DB.Model(&models.OrderItem{}).
		Select("order_items.menu_item_id, order_items.name, SUM(order_items.quantity) as sold").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("menu_items.outlet_id = ?", outlet.ID).
		Where("orders.status <> ?", models.OrderCancelled).
		Group("order_items.menu_item_id, order_items.name").
		Order("sold desc").
		Limit(10).
		Scan(&rows)

	c.JSON(http.StatusOK, gin.H{"outlet": outlet.Name, "top_items": rows})
}
