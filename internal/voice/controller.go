package voice

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"guardian-angel-api/config"
	"guardian-angel-api/internal/audio"
	"guardian-angel-api/internal/logs"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const outboundQueue = 64

type VoiceController struct {
	Connector  Connector
	Tracker    *Tracker
	LogService logs.LogServiceAPI
	LiveConfig LiveConfig
	QueueSize  int

	upgrader websocket.Upgrader
}

func NewVoiceController(connector Connector, tracker *Tracker, logService logs.LogServiceAPI, cfg *config.Config) *VoiceController {
	vc := &VoiceController{
		Connector:  connector,
		Tracker:    tracker,
		LogService: logService,
		LiveConfig: NewLiveConfig(cfg),
		QueueSize:  cfg.CaptureQueueFrames,
	}
	vc.upgrader = websocket.Upgrader{
		ReadBufferSize:  audio.CaptureFrames * 4,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return vc
}

// Live upgrades to a websocket and runs one Bridge for the connection's lifetime.
func (vc *VoiceController) Live(c *gin.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unregister, err := vc.Tracker.Register(uuid.NewString(), cancel)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	defer unregister()

	conn, err := vc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Printf("voice: websocket upgrade failed: %v", err)
		return
	}

	out := newOutboundWriter(conn, outboundQueue)
	dev := newWSDevice(out)
	bridge := NewBridge(vc.Connector, dev, dev, Options{
		Live:      vc.LiveConfig,
		QueueSize: vc.QueueSize,
		Events:    vc.LogService,
	})
	bridge.OnChange(dev.sendStatus)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := out.Run(ctx); err != nil {
			log.Printf("voice: websocket write: %v", err)
		}
	}()
	// A tracker cancel must also unblock the read loop below.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	dev.sendStatus(bridge.Snapshot())

	var starts sync.WaitGroup
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		switch mt {
		case websocket.BinaryMessage:
			dev.pushCapture(audio.FloatsFromLE(data))
		case websocket.TextMessage:
			var msg controlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			switch msg.Type {
			case "start":
				dev.setMicGranted(msg.MicGranted)
				starts.Add(1)
				go func() {
					defer starts.Done()
					if err := bridge.Start(ctx); err != nil && !errors.Is(err, ErrSessionStopped) {
						log.Printf("voice: start: %v", err)
					}
				}()
			case "stop":
				bridge.Stop()
			}
		}
	}

	cancel()
	starts.Wait()
	bridge.Stop()
	bridge.Wait()
	<-writerDone
}

func (vc *VoiceController) Sessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active": vc.Tracker.Count()})
}

// originChecker allows requests without an Origin header, same-host requests
// and any origin listed in allowed. A "*" entry allows everything.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] {
			return true
		}
		if set[strings.TrimRight(strings.ToLower(origin), "/")] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
