package client

// Severity classifies a toast for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// severityByType is the single lookup table mapping notification types to
// display severities. Unlisted types fall back to info.
var severityByType = map[string]Severity{
	"Success":          SeveritySuccess,
	"Info":             SeverityInfo,
	"Warning":          SeverityWarning,
	"Error":            SeverityError,
	"UserRegistration": SeverityInfo,
	"Welcome":          SeverityInfo,
}

// SeverityFor returns the display severity for a notification type.
func SeverityFor(notifType string) Severity {
	if s, ok := severityByType[notifType]; ok {
		return s
	}
	return SeverityInfo
}
