package domain

import "encoding/json"

type SecurityProtocol string

const (
	SecurityProtocolValidated         SecurityProtocol = "ssl-with-validation"
	SecurityProtocolValidatedCustomCA SecurityProtocol = "ssl-with-validation-custom-ca"
	SecurityProtocolUnvalidated       SecurityProtocol = "ssl-without-validation"
)

// DeriveSecurityProtocol maps the ssl flags of an endpoint onto the remote enum.
func DeriveSecurityProtocol(verifySSL, customCA bool) SecurityProtocol {
	if !verifySSL {
		return SecurityProtocolUnvalidated
	}
	if customCA {
		return SecurityProtocolValidatedCustomCA
	}
	return SecurityProtocolValidated
}

// PEM is certificate authority text. The empty value encodes as JSON null,
// which is how the remote API spells "no custom CA".
type PEM string

func (p PEM) MarshalJSON() ([]byte, error) {
	if p == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(p))
}

// EndpointAttributes is the comparable subset of an endpoint. A nil field
// is absent: on the desired side it means "leave the current value".
type EndpointAttributes struct {
	Hostname             *string           `json:"hostname,omitempty"`
	Port                 *int              `json:"port,omitempty"`
	VerifySSL            *bool             `json:"verify_ssl,omitempty"`
	CertificateAuthority *PEM              `json:"certificate_authority,omitempty"`
	SecurityProtocol     *SecurityProtocol `json:"security_protocol,omitempty"`
}

// Endpoint is a named connection surface of a provider. Role is unique
// within a provider and is the join key between desired and current sets.
type Endpoint struct {
	Role string `json:"role"`
	EndpointAttributes
}

// Authentication is the desired credential record sent with an endpoint.
type Authentication struct {
	AuthType string `json:"authtype"`
	AuthKey  string `json:"auth_key,omitempty"`
	UserID   string `json:"userid,omitempty"`
	Password string `json:"password,omitempty"`
}

// ConnectionConfiguration is one element of the provider's
// connection_configurations payload.
type ConnectionConfiguration struct {
	Endpoint       Endpoint       `json:"endpoint"`
	Authentication Authentication `json:"authentication"`
}

// Roles returns the endpoint roles of cfgs in order.
func Roles(cfgs []ConnectionConfiguration) []string {
	roles := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		roles = append(roles, c.Endpoint.Role)
	}
	return roles
}

func StringPtr(s string) *string { return &s }
func IntPtr(i int) *int          { return &i }
func BoolPtr(b bool) *bool       { return &b }
func PEMPtr(s string) *PEM       { p := PEM(s); return &p }

func SecurityProtocolPtr(p SecurityProtocol) *SecurityProtocol { return &p }
