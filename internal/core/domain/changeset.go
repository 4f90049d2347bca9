package domain

import "sort"

const (
	ChangeKeyZoneID         = "zone_id"
	ChangeKeyProviderRegion = "provider_region"
)

// Changeset classifies the keyed sub-elements of an entity that differ
// between desired and current state. Updated values carry only the
// differing sub-fields. A changeset with all three maps empty is a no-op.
type Changeset struct {
	Added   map[string]any `json:"Added"`
	Updated map[string]any `json:"Updated"`
	Removed map[string]any `json:"Removed"`
}

func NewChangeset() *Changeset {
	return &Changeset{
		Added:   map[string]any{},
		Updated: map[string]any{},
		Removed: map[string]any{},
	}
}

func (c *Changeset) IsEmpty() bool {
	return c == nil || (len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0)
}

// ChangedKeys returns the union of Added and Updated keys, sorted.
func (c *Changeset) ChangedKeys() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Added)+len(c.Updated))
	for k := range c.Added {
		seen[k] = struct{}{}
	}
	for k := range c.Updated {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
