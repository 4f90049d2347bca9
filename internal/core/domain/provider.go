package domain

import "sort"

// ProviderType is the user-facing provider family name.
type ProviderType string

const (
	ProviderOvirt                 ProviderType = "ovirt"
	ProviderOpenshiftOrigin       ProviderType = "openshift-origin"
	ProviderOpenshiftEnterprise   ProviderType = "openshift-enterprise"
	ProviderAmazon                ProviderType = "amazon"
	ProviderHawkularDatawarehouse ProviderType = "hawkular-datawarehouse"
)

const OpenshiftDefaultPort = 8443

var providerClasses = map[ProviderType]string{
	ProviderOvirt:                 "ManageIQ::Providers::Redhat::InfraManager",
	ProviderOpenshiftOrigin:       "ManageIQ::Providers::Openshift::ContainerManager",
	ProviderOpenshiftEnterprise:   "ManageIQ::Providers::OpenshiftEnterprise::ContainerManager",
	ProviderAmazon:                "ManageIQ::Providers::Amazon::CloudManager",
	ProviderHawkularDatawarehouse: "ManageIQ::Providers::Hawkular::DatawarehouseManager",
}

// RemoteClass returns the remote class identifier for t.
func (t ProviderType) RemoteClass() (string, bool) {
	c, ok := providerClasses[t]
	return c, ok
}

func (t ProviderType) IsOpenshift() bool {
	return t == ProviderOpenshiftOrigin || t == ProviderOpenshiftEnterprise
}

// UsesToken reports whether the default endpoint authenticates with a
// token. Token providers default their API port to 8443.
func (t ProviderType) UsesToken() bool {
	return t.IsOpenshift() || t == ProviderHawkularDatawarehouse
}

func ProviderTypes() []string {
	out := make([]string, 0, len(providerClasses))
	for t := range providerClasses {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// Endpoint roles and authtypes used by the provider builder.
const (
	RoleDefault    = "default"
	RoleHawkular   = "hawkular"
	RolePrometheus = "prometheus"

	AuthTypeBearer  = "bearer"
	AuthTypeDefault = "default"
)

// MonitoringRoles are the accepted values of a provider's monitoring role.
func MonitoringRoles() []string {
	return []string{RoleHawkular, RolePrometheus}
}

// SkipsValidation reports whether authentications of this authtype are
// never validated by the remote side.
func SkipsValidation(authType string) bool {
	return authType == RolePrometheus
}
