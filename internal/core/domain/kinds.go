package domain

import "sort"

// ReconcileKind names a family of desired-state entries handled by one reconciler.
type ReconcileKind string

const (
	KindProvider         ReconcileKind = "provider"
	KindAlert            ReconcileKind = "alert"
	KindUser             ReconcileKind = "user"
	KindCustomAttributes ReconcileKind = "custom_attributes"
	KindTagAssignment    ReconcileKind = "tag_assignment"
	KindPolicyAssignment ReconcileKind = "policy_assignment"
)

func (k ReconcileKind) String() string {
	return string(k)
}

// AllKinds lists the kinds in the order the engine processes them.
func AllKinds() []ReconcileKind {
	return []ReconcileKind{
		KindProvider,
		KindAlert,
		KindUser,
		KindCustomAttributes,
		KindTagAssignment,
		KindPolicyAssignment,
	}
}

// TeardownOrder returns kinds reversed. Dependent entries come last in
// AllKinds, so this order removes them before what they reference.
func TeardownOrder(kinds []ReconcileKind) []ReconcileKind {
	out := make([]ReconcileKind, len(kinds))
	for i, k := range kinds {
		out[len(kinds)-1-i] = k
	}
	return out
}

// Remote collection names.
const (
	CollectionProviders        = "providers"
	CollectionZones            = "zones"
	CollectionAlertDefinitions = "alert_definitions"
	CollectionUsers            = "users"
	CollectionGroups           = "groups"
	CollectionPolicies         = "policies"
	CollectionPolicyProfiles   = "policy_profiles"
)

var customAttributeEntities = map[string]string{
	"vm":       "vms",
	"provider": CollectionProviders,
}

var taggableResources = map[string]string{
	"provider":         CollectionProviders,
	"host":             "hosts",
	"vm":               "vms",
	"category":         "categories",
	"cluster":          "clusters",
	"data store":       "data_stores",
	"group":            CollectionGroups,
	"resource pool":    "resource_pools",
	"service":          "services",
	"service template": "service_templates",
	"template":         "templates",
	"tenant":           "tenants",
	"user":             CollectionUsers,
	"blueprint":        "blueprints",
}

var policyEntities = map[string]string{
	"policy":         CollectionPolicies,
	"policy profile": CollectionPolicyProfiles,
}

var policyResources = map[string]string{
	"provider":        CollectionProviders,
	"host":            "hosts",
	"vm":              "vms",
	"container node":  "container_nodes",
	"pod":             "container_groups",
	"replicator":      "container_replicators",
	"container image": "container_images",
}

func CustomAttributeCollection(entityType string) (string, bool) {
	c, ok := customAttributeEntities[entityType]
	return c, ok
}

func TagResourceCollection(resource string) (string, bool) {
	c, ok := taggableResources[resource]
	return c, ok
}

func PolicyEntityCollection(entity string) (string, bool) {
	c, ok := policyEntities[entity]
	return c, ok
}

func PolicyResourceCollection(resource string) (string, bool) {
	c, ok := policyResources[resource]
	return c, ok
}

func CustomAttributeEntityTypes() []string { return sortedKeys(customAttributeEntities) }
func TaggableResources() []string          { return sortedKeys(taggableResources) }
func PolicyEntities() []string             { return sortedKeys(policyEntities) }
func PolicyResources() []string            { return sortedKeys(policyResources) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
