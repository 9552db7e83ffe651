package sos

import (
	"errors"
	"fmt"
	"log"
	"time"

	"guardian-angel-api/internal/contact"
	"guardian-angel-api/internal/logs"
	"guardian-angel-api/internal/util"

	"gorm.io/gorm"
)

var ErrIncompleteLocation = errors.New("latitude and longitude must be provided together")

// SOSService records an alert and reports who would be notified. No message
// is actually sent.
type SOSService struct {
	DB       *gorm.DB
	Contacts contact.ContactServiceAPI
	Events   logs.LogServiceAPI
}

func (ss *SOSService) Trigger(input TriggerInput) (*SOSAlert, error) {
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, ErrIncompleteLocation
	}
	if input.Latitude != nil && !util.ValidCoordinates(*input.Latitude, *input.Longitude) {
		return nil, util.ErrInvalidCoordinates
	}

	contacts, err := ss.Contacts.ListContacts()
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}

	alert := &SOSAlert{
		TriggeredAt:   time.Now().UTC(),
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		NotifiedCount: len(contacts),
		Notified:      contacts,
		Message:       SimulationMessage,
	}
	if err := ss.DB.Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to save alert: %w", err)
	}

	meta := map[string]interface{}{"alert_id": alert.ID, "contacts": len(contacts)}
	if input.Latitude != nil {
		meta["latitude"] = *input.Latitude
		meta["longitude"] = *input.Longitude
	}
	if ss.Events != nil {
		if err := ss.Events.Log(logs.SystemLog{
			Level:   logs.LevelError,
			Service: "sos",
			Action:  "trigger",
			Message: SimulationMessage,
		}, meta); err != nil {
			log.Printf("sos: event log: %v", err)
		}
	}

	return alert, nil
}

// ListAlerts returns the most recent alerts first.
func (ss *SOSService) ListAlerts(limit int) ([]SOSAlert, error) {
	if limit <= 0 {
		limit = defaultAlertLimit
	}
	var alerts []SOSAlert
	if err := ss.DB.Order("triggered_at DESC").Order("id DESC").Limit(limit).Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
