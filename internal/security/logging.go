// Package security provides structured JSON logging for operational and
// security events. Distinct from the business audit trail: audit entries are
// data users can read in the portal, these logs are for operators.
package security

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// LogLevel classifies the severity of a log entry.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// SecurityEventType tags a security-relevant event.
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventDocumentSign       SecurityEventType = "DOCUMENT_SIGN"
	EventNDASign            SecurityEventType = "NDA_SIGN"
	EventProposalGenerate   SecurityEventType = "PROPOSAL_GENERATE"
	EventClientUpdate       SecurityEventType = "CLIENT_UPDATE"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventCSRFViolation      SecurityEventType = "CSRF_VIOLATION"
	EventSessionFixation    SecurityEventType = "SESSION_FIXATION"
)

// LogEntry is one structured log line, marshalled to a single JSON object.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     LogLevel          `json:"level"`
	Message   string            `json:"message"`
	Error     string            `json:"error,omitempty"`
	EventType SecurityEventType `json:"event_type,omitempty"`
	ClientID  string            `json:"client_id,omitempty"`
	TaxID     string            `json:"cnpj,omitempty"`
	IPAddress string            `json:"ip_address,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`

	// HTTP request fields
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
	Status    int    `json:"status,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`

	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Logger emits JSON log entries, one object per line, to stdout by default.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a logger writing to stdout.
func NewLogger() *Logger {
	return &Logger{
		output: log.New(os.Stdout, "", 0),
	}
}

// write marshals and emits one entry. Marshal failures fall back to a plain
// line so the event is never lost.
func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		l.output.Printf(`{"timestamp":%q,"level":"ERROR","message":"log marshal failed: %v"}`,
			entry.Timestamp.Format(time.RFC3339), err)
		return
	}
	l.output.Println(string(data))
}

// Info logs an informational message.
func (l *Logger) Info(message string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: message})
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: message})
}

// Error logs an error message with an optional underlying error.
func (l *Logger) Error(message string, err error) {
	entry := LogEntry{Level: LogLevelError, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a critical failure with an optional underlying error.
func (l *Logger) Critical(message string, err error) {
	entry := LogEntry{Level: LogLevelCritical, Message: message}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent logs a security-relevant event with actor and origin
// metadata. clientID is empty for anonymous or consultant events.
func (l *Logger) SecurityEvent(eventType SecurityEventType, clientID, taxID, ip, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:     LogLevelSecurity,
		Message:   fmt.Sprintf("Security event: %s", eventType),
		EventType: eventType,
		ClientID:  clientID,
		TaxID:     taxID,
		IPAddress: ip,
		UserAgent: userAgent,
		Extra:     extra,
	})
}

// HTTPRequest logs one handled HTTP request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ip, userAgent string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s %d (%dms)", method, path, status, latencyMS),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}
