package sos

type SOSServiceAPI interface {
	Trigger(input TriggerInput) (*SOSAlert, error)
	ListAlerts(limit int) ([]SOSAlert, error)
}
