package routes

import (
	"github.com/gin-gonic/gin"

	"foodcourt-api/handlers"
	"foodcourt-api/middleware"
	"foodcourt-api/models"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Outlets & menus (no auth needed)
		public.GET("/outlets", handlers.ListOutlets)
		public.GET("/outlets/:id", handlers.GetOutlet)
		public.GET("/outlets/:id/menu", handlers.GetOutletMenu)
		public.GET("/outlets/:id/categories", handlers.GetOutletCategories)
		public.GET("/menu-items/:id", handlers.GetMenuItem)

		// State machine info
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/reservations", handlers.CreateReservation)
		customer.GET("/reservations", handlers.GetMyReservations)
		customer.GET("/reservations/:id", handlers.GetReservationDetail)
		customer.PUT("/reservations/:id/confirm", handlers.ConfirmReservation)
		customer.PUT("/reservations/:id/cancel", handlers.CancelReservation)

		customer.POST("/orders", handlers.PlaceOrder)
		customer.GET("/orders", handlers.GetMyOrders)
		customer.GET("/orders/:id", handlers.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", handlers.CancelOrder)
	}

	// ── Outlet owner routes ────────────────────────────────────────
	outlet := r.Group("/api/outlet")
	outlet.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleOutlet))
	{
		// Outlet management
		outlet.GET("/", handlers.GetMyOutlet)
		outlet.PUT("/", handlers.UpdateOutlet)

		// Menu management
		outlet.POST("/menu", handlers.AddMenuItem)
		outlet.PUT("/menu/:itemId", handlers.UpdateMenuItem)
		outlet.DELETE("/menu/:itemId", handlers.DeleteMenuItem)

		// Table management
		outlet.POST("/tables", handlers.AddTable)
		outlet.GET("/tables", handlers.ListTables)

		// Reservation management
		outlet.GET("/reservations", handlers.GetOutletReservations)
		outlet.PUT("/reservations/:id/status", handlers.UpdateReservationStatus)
		outlet.PUT("/reservations/:id/cancel", handlers.CancelReservation)
		outlet.PUT("/reservations/:id/reassign", handlers.ReassignReservation)

		// Order management
		outlet.GET("/orders", handlers.GetOutletOrders)
		outlet.PUT("/orders/:id/status", handlers.UpdateOrderStatus)

		// Analytics
		outlet.GET("/analytics/overview", handlers.GetAnalyticsOverview)
		outlet.GET("/analytics/top-items", handlers.GetTopItems)
	}
}
