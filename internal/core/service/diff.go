package service

import (
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/pkg/compare"
)

// DiffKeyed classifies the keys of desired and current. Keys only in
// desired are Added, keys only in current are Removed, and keys in both
// whose values are not equal are Updated with partial(desired, current).
func DiffKeyed[V any](desired, current map[string]V, equal func(d, c V) bool, partial func(d, c V) V) *domain.Changeset {
	cs := domain.NewChangeset()
	for key, d := range desired {
		c, ok := current[key]
		if !ok {
			cs.Added[key] = d
			continue
		}
		if !equal(d, c) {
			cs.Updated[key] = partial(d, c)
		}
	}
	for key, c := range current {
		if _, ok := desired[key]; !ok {
			cs.Removed[key] = c
		}
	}
	return cs
}

// differs reports whether a desired field must be written. A nil desired
// field means "leave current"; a nil current field always differs.
func differs[T any](desired, current *T) bool {
	if desired == nil {
		return false
	}
	if current == nil {
		return true
	}
	return !cmp.Equal(*desired, *current)
}

// caOrEmpty folds an absent certificate authority into the explicit empty
// one; the remote side does not distinguish them.
func caOrEmpty(p *domain.PEM) *domain.PEM {
	if p == nil {
		return domain.PEMPtr("")
	}
	return p
}

func endpointPartial(d, c domain.EndpointAttributes) domain.EndpointAttributes {
	var out domain.EndpointAttributes
	if differs(d.Hostname, c.Hostname) {
		out.Hostname = d.Hostname
	}
	if differs(d.Port, c.Port) {
		out.Port = d.Port
	}
	if differs(d.VerifySSL, c.VerifySSL) {
		out.VerifySSL = d.VerifySSL
	}
	if d.CertificateAuthority != nil && differs(d.CertificateAuthority, caOrEmpty(c.CertificateAuthority)) {
		out.CertificateAuthority = d.CertificateAuthority
	}
	if differs(d.SecurityProtocol, c.SecurityProtocol) {
		out.SecurityProtocol = d.SecurityProtocol
	}
	return out
}

func endpointEqual(d, c domain.EndpointAttributes) bool {
	return cmp.Equal(endpointPartial(d, c), domain.EndpointAttributes{})
}

func endpointsByRole(endpoints []domain.Endpoint) map[string]domain.EndpointAttributes {
	out := make(map[string]domain.EndpointAttributes, len(endpoints))
	for _, ep := range endpoints {
		out[ep.Role] = ep.EndpointAttributes
	}
	return out
}

// DiffEndpoints diffs endpoint sets keyed by role.
func DiffEndpoints(desired, current []domain.Endpoint) *domain.Changeset {
	return DiffKeyed(endpointsByRole(desired), endpointsByRole(current), endpointEqual, endpointPartial)
}

// ProviderChangeset diffs a provider's endpoints and injects zone and
// region changes into Updated under their own keys.
func ProviderChangeset(desired []domain.ConnectionConfiguration, current *ProviderState, zoneID string, region *string) *domain.Changeset {
	endpoints := make([]domain.Endpoint, 0, len(desired))
	for _, c := range desired {
		endpoints = append(endpoints, c.Endpoint)
	}
	cs := DiffEndpoints(endpoints, current.Endpoints)

	if current.ZoneID != zoneID {
		cs.Updated[domain.ChangeKeyZoneID] = zoneID
	}
	if region != nil && *region == "" {
		region = nil
	}
	if !cmp.Equal(region, current.Region) {
		cs.Updated[domain.ChangeKeyProviderRegion] = region
	}
	return cs
}

// FilterUnsupportedFields drops empty certificate authorities from the
// desired configurations when the remote side does not know the field, so
// that older API versions do not see a spurious change. cfgs is modified
// in place.
func FilterUnsupportedFields(cfgs []domain.ConnectionConfiguration, supportsCertificateAuthority bool) {
	if supportsCertificateAuthority {
		return
	}
	for i := range cfgs {
		ca := cfgs[i].Endpoint.CertificateAuthority
		if ca != nil && *ca == "" {
			cfgs[i].Endpoint.CertificateAuthority = nil
		}
	}
}

// AlertDifferences returns the alert attributes that must be written, in
// a stable order. Null values on the remote side are ignored and numbers
// compare by value.
func AlertDifferences(desired AlertAttributes, current *RemoteAlert) []string {
	var diffs []string

	if desired.Expression != nil {
		var currentExp map[string]any
		if exp, ok := current.Expression["exp"].(map[string]any); ok {
			currentExp = compare.DropNulls(exp)
		}
		if !compare.Equal(desired.Expression, currentExp) {
			diffs = append(diffs, "expression")
		}
	}
	if desired.DB != nil && (current.DB == nil || *current.DB != *desired.DB) {
		diffs = append(diffs, "db")
	}
	if desired.Options != nil && !compare.Equal(desired.Options, compare.DropNulls(current.Options)) {
		diffs = append(diffs, "options")
	}
	if differs(desired.Enabled, current.Enabled) {
		diffs = append(diffs, "enabled")
	}
	sort.Strings(diffs)
	return diffs
}

// AlertAttributes is the desired, comparable part of an alert definition.
// Nil fields are not compared.
type AlertAttributes struct {
	DB         *string
	Expression map[string]any
	Options    map[string]any
	Enabled    *bool
}

// UserDifferences returns, sorted, the user fields that must be written.
// Only the fields given on the desired side are compared.
func UserDifferences(current map[string]any, name, groupID, email string) []string {
	desired := make(map[string]any, 3)
	actual := make(map[string]any, 3)
	compareField := func(key, want string, have any) {
		if want == "" {
			return
		}
		desired[key] = want
		if have != nil {
			actual[key] = have
		}
	}
	compareField("name", name, current["name"])
	var currentGroup any
	if id := IDString(current["current_group_id"]); id != "" {
		currentGroup = id
	}
	compareField("current_group_id", groupID, currentGroup)
	compareField("email", email, current["email"])
	return compare.DifferingKeys(desired, actual)
}
