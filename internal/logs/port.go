package logs

// LogServiceAPI is the write side of the event log used by other features.
type LogServiceAPI interface {
	Log(log SystemLog, metadata interface{}) error
}
