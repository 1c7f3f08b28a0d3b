package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CuisineType is the closed set of cuisine categories an outlet can declare
type CuisineType string

const (
	CuisineKenyan   CuisineType = "kenyan"
	CuisineIndian   CuisineType = "indian"
	CuisineChinese  CuisineType = "chinese"
	CuisineItalian  CuisineType = "italian"
	CuisineMexican  CuisineType = "mexican"
	CuisineNigerian CuisineType = "nigerian"
	CuisineOther    CuisineType = "other"
)

// ValidCuisine reports whether the cuisine belongs to the closed set.
func ValidCuisine(c CuisineType) bool {
	switch c {
	case CuisineKenyan, CuisineIndian, CuisineChinese, CuisineItalian,
		CuisineMexican, CuisineNigerian, CuisineOther:
		return true
	}
	return false
}

// MenuCategory is the closed set of menu item categories
type MenuCategory string

const (
	CategoryAppetizer MenuCategory = "appetizer"
	CategoryMain      MenuCategory = "main"
	CategoryDessert   MenuCategory = "dessert"
	CategorySnack     MenuCategory = "snack"
	CategoryBeverage  MenuCategory = "beverage"
)

// ValidMenuCategory reports whether the category belongs to the closed set.
func ValidMenuCategory(c MenuCategory) bool {
	switch c {
	case CategoryAppetizer, CategoryMain, CategoryDessert, CategorySnack, CategoryBeverage:
		return true
	}
	return false
}

// Outlet is a vendor stall within the food court — the tenant boundary for
// menus, tables, reservations and orders. Never hard-deleted while
// referenced; soft-disabled via IsActive.
type Outlet struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	OwnerID     uint             `json:"owner_id" gorm:"not null;uniqueIndex"`
	Owner       User             `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Name        string           `json:"outlet_name" gorm:"not null"`
	Cuisine     CuisineType      `json:"cuisine_type" gorm:"not null"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	IsActive    bool             `json:"is_active" gorm:"default:true"`
	MenuItems   []MenuItem       `json:"menu_items,omitempty" gorm:"foreignKey:OutletID"`
	Tables      []FoodCourtTable `json:"tables,omitempty" gorm:"foreignKey:OutletID"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type MenuItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OutletID    uint            `json:"outlet_id" gorm:"not null;index"`
	Name        string          `json:"item_name" gorm:"not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category    MenuCategory    `json:"category" gorm:"not null"`
	ImageURL    string          `json:"image_url"`
	IsAvailable bool            `json:"is_available" gorm:"default:true"`
	// PrepTime is in minutes; snapshotted onto OrderItem at order time
	PrepTime  int       `json:"preparation_time" gorm:"not null;default:15"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
