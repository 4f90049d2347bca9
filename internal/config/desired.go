package config

import (
	"github.com/olusolaa/miq-converge/internal/core/domain"
)

// DesiredState is the whole desired document. Entries of each kind are
// processed in the order they appear.
type DesiredState struct {
	Providers         []ProviderSpec         `mapstructure:"providers" yaml:"providers" validate:"dive"`
	Alerts            []AlertSpec            `mapstructure:"alerts" yaml:"alerts" validate:"dive"`
	Users             []UserSpec             `mapstructure:"users" yaml:"users" validate:"dive"`
	CustomAttributes  []CustomAttributesSpec `mapstructure:"custom_attributes" yaml:"custom_attributes" validate:"dive"`
	TagAssignments    []TagAssignmentSpec    `mapstructure:"tag_assignments" yaml:"tag_assignments" validate:"dive"`
	PolicyAssignments []PolicyAssignmentSpec `mapstructure:"policy_assignments" yaml:"policy_assignments" validate:"dive"`
}

func (d *DesiredState) IsEmpty() bool {
	return len(d.Providers) == 0 && len(d.Alerts) == 0 && len(d.Users) == 0 &&
		len(d.CustomAttributes) == 0 && len(d.TagAssignments) == 0 && len(d.PolicyAssignments) == 0
}

// Specs returns the entries of kind in document order.
func (d *DesiredState) Specs(kind domain.ReconcileKind) []domain.Spec {
	var out []domain.Spec
	switch kind {
	case domain.KindProvider:
		for i := range d.Providers {
			out = append(out, &d.Providers[i])
		}
	case domain.KindAlert:
		for i := range d.Alerts {
			out = append(out, &d.Alerts[i])
		}
	case domain.KindUser:
		for i := range d.Users {
			out = append(out, &d.Users[i])
		}
	case domain.KindCustomAttributes:
		for i := range d.CustomAttributes {
			out = append(out, &d.CustomAttributes[i])
		}
	case domain.KindTagAssignment:
		for i := range d.TagAssignments {
			out = append(out, &d.TagAssignments[i])
		}
	case domain.KindPolicyAssignment:
		for i := range d.PolicyAssignments {
			out = append(out, &d.PolicyAssignments[i])
		}
	}
	return out
}

// ApplyDefaults fills the optional fields whose absence has a defined
// default. Fields whose absence means "leave current" are not touched.
func (d *DesiredState) ApplyDefaults() {
	for i := range d.Providers {
		p := &d.Providers[i]
		p.State = defaultState(p.State)
		if p.Port == 0 && p.Type.UsesToken() {
			p.Port = domain.OpenshiftDefaultPort
		}
		if p.VerifySSL == nil {
			p.VerifySSL = domain.BoolPtr(true)
		}
		if p.Validate == nil {
			p.Validate = domain.BoolPtr(true)
		}
		if p.Refresh == nil {
			p.Refresh = domain.BoolPtr(true)
		}
	}
	for i := range d.Alerts {
		a := &d.Alerts[i]
		a.State = defaultState(a.State)
		if a.Enabled == nil {
			a.Enabled = domain.BoolPtr(true)
		}
	}
	for i := range d.Users {
		d.Users[i].State = defaultState(d.Users[i].State)
	}
	for i := range d.CustomAttributes {
		c := &d.CustomAttributes[i]
		c.State = defaultState(c.State)
		for j := range c.Attributes {
			if c.Attributes[j].Section == "" {
				c.Attributes[j].Section = domain.DefaultCustomAttributeSection
			}
		}
	}
	for i := range d.TagAssignments {
		d.TagAssignments[i].State = defaultState(d.TagAssignments[i].State)
	}
	for i := range d.PolicyAssignments {
		d.PolicyAssignments[i].State = defaultState(d.PolicyAssignments[i].State)
	}
}

func defaultState(s domain.State) domain.State {
	if s == "" {
		return domain.StatePresent
	}
	return s
}

type ProviderSpec struct {
	Name  string              `mapstructure:"name" yaml:"name" validate:"required"`
	Type  domain.ProviderType `mapstructure:"type" yaml:"type" validate:"required,provider_type"`
	State domain.State        `mapstructure:"state" yaml:"state" validate:"omitempty,oneof=present absent"`
	Zone  string              `mapstructure:"zone" yaml:"zone"`

	Region   string `mapstructure:"region" yaml:"region" validate:"required_if=Type amazon State present"`
	Hostname string `mapstructure:"hostname" yaml:"hostname"`
	Port     int    `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
	Token    string `mapstructure:"token" yaml:"token"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Amazon credentials. When both are empty the AWS default credential
	// chain is consulted.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	VerifySSL *bool  `mapstructure:"verify_ssl" yaml:"verify_ssl"`
	CAPath    string `mapstructure:"ca_path" yaml:"ca_path" validate:"omitempty,file"`

	Monitoring         string `mapstructure:"monitoring" yaml:"monitoring" validate:"omitempty,monitoring_role"`
	MonitoringHostname string `mapstructure:"monitoring_hostname" yaml:"monitoring_hostname" validate:"required_with=Monitoring"`
	MonitoringPort     int    `mapstructure:"monitoring_port" yaml:"monitoring_port" validate:"required_with=Monitoring,max=65535"`

	Validate *bool `mapstructure:"validate" yaml:"validate"`
	Refresh  *bool `mapstructure:"refresh" yaml:"refresh"`
}

func (p *ProviderSpec) Kind() domain.ReconcileKind { return domain.KindProvider }
func (p *ProviderSpec) Identity() string           { return p.Name }
func (p *ProviderSpec) DesiredState() domain.State { return p.State }

func (p *ProviderSpec) ShouldValidate() bool { return p.Validate == nil || *p.Validate }
func (p *ProviderSpec) ShouldRefresh() bool  { return p.Refresh == nil || *p.Refresh }
func (p *ProviderSpec) VerifiesSSL() bool    { return p.VerifySSL == nil || *p.VerifySSL }

type AlertSpec struct {
	Description string         `mapstructure:"description" yaml:"description" validate:"required"`
	State       domain.State   `mapstructure:"state" yaml:"state" validate:"omitempty,oneof=present absent"`
	DB          string         `mapstructure:"db" yaml:"db" validate:"required_if=State present"`
	Expression  map[string]any `mapstructure:"expression" yaml:"expression" validate:"required_if=State present"`
	Options     map[string]any `mapstructure:"options" yaml:"options" validate:"required_if=State present"`
	Enabled     *bool          `mapstructure:"enabled" yaml:"enabled"`
}

func (a *AlertSpec) Kind() domain.ReconcileKind { return domain.KindAlert }
func (a *AlertSpec) Identity() string           { return a.Description }
func (a *AlertSpec) DesiredState() domain.State { return a.State }

type UserSpec struct {
	UserID   string       `mapstructure:"userid" yaml:"userid" validate:"required"`
	State    domain.State `mapstructure:"state" yaml:"state" validate:"omitempty,oneof=present absent"`
	Name     string       `mapstructure:"name" yaml:"name" validate:"required_if=State present"`
	Password string       `mapstructure:"password" yaml:"password" validate:"required_if=State present"`
	Group    string       `mapstructure:"group" yaml:"group" validate:"required_if=State present"`
	Email    string       `mapstructure:"email" yaml:"email" validate:"omitempty,email"`
}

func (u *UserSpec) Kind() domain.ReconcileKind { return domain.KindUser }
func (u *UserSpec) Identity() string           { return u.UserID }
func (u *UserSpec) DesiredState() domain.State { return u.State }

type CustomAttributeSpec struct {
	Name    string `mapstructure:"name" yaml:"name" validate:"required"`
	Value   string `mapstructure:"value" yaml:"value"`
	Section string `mapstructure:"section" yaml:"section"`
}

type CustomAttributesSpec struct {
	EntityType string                `mapstructure:"entity_type" yaml:"entity_type" validate:"required,custom_attribute_entity"`
	EntityName string                `mapstructure:"entity_name" yaml:"entity_name" validate:"required"`
	State      domain.State          `mapstructure:"state" yaml:"state" validate:"omitempty,oneof=present absent"`
	Attributes []CustomAttributeSpec `mapstructure:"attributes" yaml:"attributes" validate:"min=1,dive"`
}

func (c *CustomAttributesSpec) Kind() domain.ReconcileKind { return domain.KindCustomAttributes }
func (c *CustomAttributesSpec) Identity() string {
	return c.EntityType + "/" + c.EntityName
}
func (c *CustomAttributesSpec) DesiredState() domain.State { return c.State }

type TagAssignmentSpec struct {
	Resource     string       `mapstructure:"resource" yaml:"resource" validate:"required,tag_resource"`
	ResourceName string       `mapstructure:"resource_name" yaml:"resource_name" validate:"required"`
	State        domain.State `mapstructure:"state" yaml:"state" validate:"omitempty,oneof=present absent"`
	Tags         []domain.Tag `mapstructure:"tags" yaml:"tags" validate:"min=1,dive"`
}

func (t *TagAssignmentSpec) Kind() domain.ReconcileKind { return domain.KindTagAssignment }
func (t *TagAssignmentSpec) Identity() string           { return t.Resource + "/" + t.ResourceName }
func (t *TagAssignmentSpec) DesiredState() domain.State { return t.State }

type PolicyAssignmentSpec struct {
	Entity       string       `mapstructure:"entity" yaml:"entity" validate:"required,policy_entity"`
	EntityName   string       `mapstructure:"entity_name" yaml:"entity_name" validate:"required"`
	Resource     string       `mapstructure:"resource" yaml:"resource" validate:"required,policy_resource"`
	ResourceName string       `mapstructure:"resource_name" yaml:"resource_name" validate:"required"`
	State        domain.State `mapstructure:"state" yaml:"state" validate:"omitempty,oneof=present absent"`
}

func (p *PolicyAssignmentSpec) Kind() domain.ReconcileKind { return domain.KindPolicyAssignment }
func (p *PolicyAssignmentSpec) Identity() string {
	return p.Entity + " " + p.EntityName + " on " + p.Resource + " " + p.ResourceName
}
func (p *PolicyAssignmentSpec) DesiredState() domain.State { return p.State }

// ForceState overrides the state of every entry. Used by the delete command.
func (d *DesiredState) ForceState(s domain.State) {
	for i := range d.Providers {
		d.Providers[i].State = s
	}
	for i := range d.Alerts {
		d.Alerts[i].State = s
	}
	for i := range d.Users {
		d.Users[i].State = s
	}
	for i := range d.CustomAttributes {
		d.CustomAttributes[i].State = s
	}
	for i := range d.TagAssignments {
		d.TagAssignments[i].State = s
	}
	for i := range d.PolicyAssignments {
		d.PolicyAssignments[i].State = s
	}
}

// HasProviderType reports whether any provider meant to exist has type t.
func (d *DesiredState) HasProviderType(t domain.ProviderType) bool {
	for _, p := range d.Providers {
		if p.Type == t && p.State != domain.StateAbsent {
			return true
		}
	}
	return false
}
