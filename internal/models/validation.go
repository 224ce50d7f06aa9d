package models

// WarningLevel ranks diagnostics by severity.
type WarningLevel string

const (
	LevelError   WarningLevel = "error"
	LevelWarning WarningLevel = "warning"
	LevelInfo    WarningLevel = "info"
)

// WarningType names the kind of entity a diagnostic points at.
type WarningType string

const (
	WarningTypeSubject WarningType = "subject"
	WarningTypeTeacher WarningType = "teacher"
	WarningTypeGeneral WarningType = "general"
)

// ValidationWarning is a single feasibility diagnostic.
type ValidationWarning struct {
	ID         string       `json:"id" yaml:"id"`
	Level      WarningLevel `json:"level" yaml:"level"`
	Message    string       `json:"message" yaml:"message"`
	Suggestion string       `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	RelatedID  string       `json:"relatedId,omitempty" yaml:"relatedId,omitempty"`
	Type       WarningType  `json:"type,omitempty" yaml:"type,omitempty"`
}
