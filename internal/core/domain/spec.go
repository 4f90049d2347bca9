package domain

type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// Spec is one desired-state entry.
type Spec interface {
	Kind() ReconcileKind
	// Identity is the display name used in logs and results.
	Identity() string
	DesiredState() State
}

// Tag is a managed tag identified by category and name.
type Tag struct {
	Category string `json:"category" mapstructure:"category" yaml:"category" validate:"required"`
	Name     string `json:"name" mapstructure:"name" yaml:"name" validate:"required"`
}

// Path returns the full managed tag path, /managed/{category}/{name}.
func (t Tag) Path() string {
	return "/managed/" + t.Category + "/" + t.Name
}

const DefaultCustomAttributeSection = "metadata"

// CustomAttribute is keyed remotely by (name, section).
type CustomAttribute struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Section string `json:"section,omitempty"`
	Href    string `json:"href,omitempty"`
}

func (c CustomAttribute) Key() string {
	section := c.Section
	if section == "" {
		section = DefaultCustomAttributeSection
	}
	return section + "/" + c.Name
}
