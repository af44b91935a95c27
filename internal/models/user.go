// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username        string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	ArtistName      string     `json:"artist_name" gorm:"size:100"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `json:"-" gorm:"size:255;not null"`
	UserType        UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status          UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData     JSONB      `json:"profile_data" gorm:"type:jsonb"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	Beats         []Beat           `json:"beats,omitempty" gorm:"foreignKey:ProducerID"`
	SoundKits     []SoundKit       `json:"sound_kits,omitempty" gorm:"foreignKey:ProducerID"`
	Services      []ServiceListing `json:"services,omitempty" gorm:"foreignKey:ProducerID"`
	Coupons       []Coupon         `json:"coupons,omitempty" gorm:"foreignKey:SellerID"`
	Orders        []Order          `json:"orders,omitempty" gorm:"foreignKey:BuyerID"`
	Subscriptions []Subscription   `json:"subscriptions,omitempty" gorm:"foreignKey:UserID"`
}

// DisplayName is the name printed on contracts and profile pages.
func (u *User) DisplayName() string {
	if u.ArtistName != "" {
		return u.ArtistName
	}
	return u.Username
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
