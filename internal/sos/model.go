package sos

import (
	"time"

	"guardian-angel-api/internal/contact"
)

const SimulationMessage = "SOS triggered. Simulating sending location to all contacts and calling emergency services."

type TriggerInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type SOSAlert struct {
	ID            uint                       `gorm:"primaryKey;autoIncrement" json:"id"`
	TriggeredAt   time.Time                  `gorm:"not null;index" json:"triggered_at"`
	Latitude      *float64                   `json:"latitude,omitempty"`
	Longitude     *float64                   `json:"longitude,omitempty"`
	NotifiedCount int                        `gorm:"not null" json:"notified_count"`
	Notified      []contact.EmergencyContact `gorm:"-" json:"notified,omitempty"`
	Message       string                     `gorm:"type:text;not null" json:"message"`
}

func (SOSAlert) TableName() string {
	return "sos_alerts"
}

const defaultAlertLimit = 20
