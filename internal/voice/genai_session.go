package voice

import (
	"context"
	"errors"
	"io"
	"net"

	"guardian-angel-api/internal/audio"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

// Replaced in tests.
var genaiLiveConnectHook = func(c *genai.Client, ctx context.Context, model string, cfg *genai.LiveConnectConfig) (*genai.Session, error) {
	return c.Live.Connect(ctx, model, cfg)
}

// GenAIConnector opens live sessions through the genai SDK.
type GenAIConnector struct {
	Client *genai.Client
}

func NewGenAIConnector(client *genai.Client) *GenAIConnector {
	return &GenAIConnector{Client: client}
}

func (g *GenAIConnector) Connect(ctx context.Context, cfg LiveConfig) (StreamingSession, error) {
	sess, err := genaiLiveConnectHook(g.Client, ctx, cfg.Model, liveConnectConfig(cfg))
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	return &genaiSession{sess: sess}, nil
}

func liveConnectConfig(cfg LiveConfig) *genai.LiveConnectConfig {
	lc := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.VoiceName},
			},
		},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if cfg.SystemInstruction != "" {
		lc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	return lc
}

type genaiSession struct {
	sess *genai.Session
}

func (s *genaiSession) Send(f Frame) error {
	data, err := audio.DecodeTextToBytes(f.Data)
	if err != nil {
		return err
	}
	return s.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: data, MIMEType: f.MIMEType},
	})
}

func (s *genaiSession) Receive() (Message, error) {
	msg, err := s.sess.Receive()
	if err != nil {
		if isSessionClosed(err) {
			return Message{}, io.EOF
		}
		return Message{}, err
	}
	return messageFromServer(msg), nil
}

func (s *genaiSession) Close() error {
	return s.sess.Close()
}

// messageFromServer keeps the first inline audio part, the output
// transcription and the interruption flag.
func messageFromServer(msg *genai.LiveServerMessage) Message {
	var out Message
	if msg == nil || msg.ServerContent == nil {
		return out
	}
	sc := msg.ServerContent
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Audio = audio.EncodeBytesToText(part.InlineData.Data)
				break
			}
		}
	}
	if sc.OutputTranscription != nil {
		out.Transcript = sc.OutputTranscription.Text
	}
	out.Interrupted = sc.Interrupted
	return out
}

func isSessionClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
