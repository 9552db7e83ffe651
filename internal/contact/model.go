package contact

import "time"

type EmergencyContact struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     string    `gorm:"size:64;not null" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (EmergencyContact) TableName() string {
	return "emergency_contacts"
}

type AddContactInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DefaultContact is always present at the head of the list.
var DefaultContact = EmergencyContact{ID: "1", Name: "Emergency Services", Phone: "911"}
