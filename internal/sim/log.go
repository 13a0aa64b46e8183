package sim

import (
	"fmt"
	"strings"
)

// Severity grades an engine log entry.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "INFO":
		*s = Info
	case "WARNING":
		*s = Warning
	case "ERROR":
		*s = Error
	case "CRITICAL":
		*s = Critical
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
	return nil
}

// LogEntry is one message produced while processing a step.
type LogEntry struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// String renders the entry with an upper-case severity prefix, e.g. "CRITICAL: ...".
func (l LogEntry) String() string {
	return l.Severity.String() + ": " + l.Message
}
