package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a user facing message created when an application changes state
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string    `gorm:"type:text;not null;<-:create" json:"message"`
	IsRead    bool      `gorm:"type:boolean;not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"not null;index;<-:create" json:"created_at"`
}
