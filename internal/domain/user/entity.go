// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents the user entity
type User struct {
	ID                   uint        `gorm:"primaryKey" json:"_id"`
	Name                 string      `gorm:"not null;size:100" json:"name"`
	Email                string      `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password             string      `gorm:"not null;size:255" json:"-"`
	Phone                string      `gorm:"index;size:30" json:"phone"`
	Avatar               string      `gorm:"size:500;default:''" json:"avatar"`
	Preferences          Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	IsAdmin              bool        `gorm:"default:false" json:"isAdmin"`
	IsVerified           bool        `gorm:"default:false" json:"isVerified"`
	VerificationToken    string      `gorm:"size:255" json:"-"`
	ResetPasswordToken   string      `gorm:"size:255" json:"-"`
	ResetPasswordExpires *time.Time  `json:"-"`
	LastLogin            *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`

	// Relationships
	Addresses []Address      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses"`
	Cart      []CartItem     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"cart,omitempty"`
	Wishlist  []WishlistItem `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"wishlist,omitempty"`
}

// Preferences holds notification flags
type Preferences struct {
	Newsletter         bool `gorm:"not null" json:"newsletter"`
	EmailNotifications bool `gorm:"not null" json:"emailNotifications"`
	SMSNotifications   bool `gorm:"not null" json:"smsNotifications"`
}

// DefaultPreferences returns the preferences a new account starts with
func DefaultPreferences() Preferences {
	return Preferences{Newsletter: true, EmailNotifications: true}
}

// Address represents a user address. At most one per user is default.
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Street    string    `gorm:"size:255;not null" json:"street"`
	City      string    `gorm:"size:100;not null" json:"city"`
	State     string    `gorm:"size:100;not null" json:"state"`
	ZipCode   string    `gorm:"size:20;default:''" json:"zipCode"`
	Country   string    `gorm:"size:100;not null;default:'Egypt'" json:"country"`
	IsDefault bool      `gorm:"default:false" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartItem is a product in the user's cart with the price at the time it was added
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product"`
	Quantity  int       `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	AddedAt   time.Time `json:"addedAt"`
}

// WishlistItem is a product saved for later
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"-"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product"`
	AddedAt   time.Time `json:"addedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "user_addresses"
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "user_cart_items"
}

// TableName overrides the table name for WishlistItem
func (WishlistItem) TableName() string {
	return "user_wishlist_items"
}

// BeforeSave normalizes identity fields
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Phone = strings.TrimSpace(u.Phone)
	return nil
}

// BeforeCreate fills address defaults
func (a *Address) BeforeCreate(tx *gorm.DB) error {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "Egypt"
	}
	return nil
}

// CartTotal returns the sum of price times quantity over the cart
func (u *User) CartTotal() float64 {
	var total float64
	for _, item := range u.Cart {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CartItemCount returns the number of units in the cart
func (u *User) CartItemCount() int {
	var count int
	for _, item := range u.Cart {
		count += item.Quantity
	}
	return count
}
