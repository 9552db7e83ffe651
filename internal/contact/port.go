package contact

type ContactServiceAPI interface {
	AddContact(name, phone string) (*EmergencyContact, error)
	ListContacts() ([]EmergencyContact, error)
}

var _ ContactServiceAPI = (*ContactService)(nil)
