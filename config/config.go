package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	GeminiKey   string
	GCPProject  string
	GCPLocation string

	InsightModel string
	HavenModel   string
	LiveModel    string
	VoiceName    string

	AllowedOrigins []string

	CaptureQueueFrames int
	MaxLiveSessions    int

	DatabaseDSN string
}

const (
	defaultPort         = "8080"
	defaultInsightModel = "gemini-3-flash-preview"
	defaultHavenModel   = "gemini-2.5-flash"
	defaultLiveModel    = "gemini-2.5-flash-native-audio-preview-09-2025"
	defaultVoiceName    = "Kore"
	defaultGCPLocation  = "global"
	defaultCaptureQueue = 32
	defaultMaxLive      = 16

	// Shared cache keeps every pooled connection on the same in-memory database.
	defaultDatabaseDSN = "file:guardian?mode=memory&cache=shared"
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// LoadDotEnv fills unset environment variables from .env files (default
// ".env"). Missing files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func LoadConfig() Config {
	return Config{
		Port:               envOr("PORT", defaultPort),
		GeminiKey:          os.Getenv("GEMINI_KEY"),
		GCPProject:         os.Getenv("GCP_PROJECT"),
		GCPLocation:        envOr("GCP_LOCATION", defaultGCPLocation),
		InsightModel:       envOr("INSIGHT_MODEL", defaultInsightModel),
		HavenModel:         envOr("HAVEN_MODEL", defaultHavenModel),
		LiveModel:          envOr("LIVE_MODEL", defaultLiveModel),
		VoiceName:          envOr("VOICE_NAME", defaultVoiceName),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS"), defaultAllowedOrigins),
		CaptureQueueFrames: intOr("CAPTURE_QUEUE_FRAMES", defaultCaptureQueue),
		MaxLiveSessions:    intOr("MAX_LIVE_SESSIONS", defaultMaxLive),
		DatabaseDSN:        envOr("DATABASE_DSN", defaultDatabaseDSN),
	}
}

// UseVertex reports whether the genai client should authenticate with ADC
// against Vertex AI instead of an API key.
func (c Config) UseVertex() bool {
	return c.GeminiKey == "" && c.GCPProject != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(raw string, fallback []string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
