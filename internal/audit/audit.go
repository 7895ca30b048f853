package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ActionExport     = "export"
	ActionPresetSave = "preset_save"
	ActionPresetEdit = "preset_edit"

	ResourceInvoice = "invoice"
	ResourceSummary = "billing_summary"
	ResourcePreset  = "projection_preset"
)

// Entry represents an audit log entry.
type Entry struct {
	ID            string
	TenantID      string
	Actor         string
	Role          string
	Action        string
	ResourceType  string
	ResourceID    string
	Format        string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FromRequest pre-fills request-scoped fields of an entry.
func FromRequest(r *http.Request, action, resourceType, resourceID string) Entry {
	return Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           ClientIP(r),
		UserAgent:    userAgent(r),
	}
}

// ClientIP extracts client ip from common headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

func prepare(entry Entry, now time.Time) Entry {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now.UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	return entry
}

// LogLogger writes audit entries to a structured log only.
type LogLogger struct {
	log zerolog.Logger
}

// NewLogLogger constructs a log-backed audit logger.
func NewLogLogger(log zerolog.Logger) *LogLogger {
	return &LogLogger{log: log.With().Str("component", "audit").Logger()}
}

// Log writes an audit entry as a log event.
func (l *LogLogger) Log(_ context.Context, entry Entry) error {
	entry = prepare(entry, time.Now())
	l.log.Info().
		Str("audit_id", entry.ID).
		Str("tenant_id", entry.TenantID).
		Str("actor", entry.Actor).
		Str("role", entry.Role).
		Str("action", entry.Action).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("format", entry.Format).
		Str("ip", entry.IP).
		Msg("audit")
	return nil
}

// MemoryLogger keeps audit entries in memory.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLogger constructs an in-memory audit logger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log appends an audit entry.
func (m *MemoryLogger) Log(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, prepare(entry, time.Now()))
	return nil
}

// Entries returns a copy of recorded entries.
func (m *MemoryLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
