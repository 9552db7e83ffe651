package contact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNameAndPhoneRequired = errors.New("name and phone are required")

// newContactID returns a time-ordered token; IDs are never reused.
var newContactID = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

type ContactService struct {
	DB *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{DB: db}
}

func (cs *ContactService) SeedDefaults() error {
	seed := DefaultContact
	seed.CreatedAt = time.Unix(0, 0).UTC()
	if err := cs.DB.Where("id = ?", seed.ID).FirstOrCreate(&seed).Error; err != nil {
		return fmt.Errorf("seed contacts: %w", err)
	}
	return nil
}

func (cs *ContactService) AddContact(name, phone string) (*EmergencyContact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, ErrNameAndPhoneRequired
	}

	c := EmergencyContact{
		ID:    newContactID(),
		Name:  name,
		Phone: phone,
	}
	if err := cs.DB.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}
	return &c, nil
}

func (cs *ContactService) ListContacts() ([]EmergencyContact, error) {
	contacts := []EmergencyContact{}
	if err := cs.DB.Order("created_at ASC").Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
