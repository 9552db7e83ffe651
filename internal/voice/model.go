package voice

import "guardian-angel-api/config"

type State string

const (
	StateStandby    State = "standby"
	StateConnecting State = "connecting"
	StateActive     State = "active"
	StateFinished   State = "finished"
	StateError      State = "error"
)

const (
	StatusStandby         = "Standby"
	StatusConnecting      = "Connecting..."
	StatusActive          = "Active"
	StatusFinished        = "Finished"
	StatusConnectionError = "Connection Error"
	StatusFailedToStart   = "Failed to Start"
)

// Persona is the fixed system instruction for the companion voice.
const Persona = "You are Guardian, a supportive AI companion for a woman walking alone. " +
	"Your goal is to stay on the line, talk friendly, keep her company, and make her feel safe. " +
	"If she mentions trouble, reassure her and ask if she wants to use the SOS feature. " +
	"Be conversational and human-like."

const (
	transcriptLabel    = "Guardian: "
	maxTranscriptLines = 5
)

// Snapshot is what the UI reads from a bridge.
type Snapshot struct {
	State           State    `json:"state"`
	Status          string   `json:"status"`
	TranscriptLines []string `json:"transcript_lines"`
}

type LiveConfig struct {
	Model             string
	VoiceName         string
	SystemInstruction string
}

func NewLiveConfig(cfg *config.Config) LiveConfig {
	return LiveConfig{
		Model:             cfg.LiveModel,
		VoiceName:         cfg.VoiceName,
		SystemInstruction: Persona,
	}
}

// Frame is one outbound realtime input chunk. Data is base64 PCM.
type Frame struct {
	Data     string
	MIMEType string
}

// Message is one inbound server event. Any combination of fields may be set.
type Message struct {
	Audio       string
	Transcript  string
	Interrupted bool
}
