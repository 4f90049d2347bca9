package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const fieldCertificateAuthority = "certificate_authority"

// ProviderState is the current representation of a provider.
type ProviderState struct {
	ID        string
	Endpoints []domain.Endpoint
	ZoneID    string
	// Region is nil when the provider has none; an empty string from the
	// remote side is folded into nil.
	Region *string
	// SupportsCertificateAuthority is true when at least one endpoint
	// object carries the certificate_authority key.
	SupportsCertificateAuthority bool
}

// Fetcher retrieves the current state of entities. Calls are never retried.
type Fetcher struct {
	client ports.APIClient
	logger ports.Logger
}

func NewFetcher(client ports.APIClient, logger ports.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

type providerResponse struct {
	ID             any              `json:"id"`
	ZoneID         any              `json:"zone_id"`
	ProviderRegion *string          `json:"provider_region"`
	Endpoints      []map[string]any `json:"endpoints"`
}

func (f *Fetcher) ProviderState(ctx context.Context, id string) (*ProviderState, error) {
	query := url.Values{}
	query.Set("attributes", "endpoints")

	var resp providerResponse
	if err := f.client.Get(ctx, domain.CollectionProviders+"/"+id, query, &resp); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport, "failed to get provider data")
	}

	state := &ProviderState{ID: id, ZoneID: IDString(resp.ZoneID)}
	if resp.ProviderRegion != nil && *resp.ProviderRegion != "" {
		region := *resp.ProviderRegion
		state.Region = &region
	}

	for _, raw := range resp.Endpoints {
		if _, ok := raw[fieldCertificateAuthority]; ok {
			state.SupportsCertificateAuthority = true
		}
		ep, err := decodeEndpoint(raw)
		if err != nil {
			return nil, err
		}
		state.Endpoints = append(state.Endpoints, ep)
	}
	f.logger.Debugf(ctx, "Fetched provider %s: %d endpoints, zone %s, ca supported %t",
		id, len(state.Endpoints), state.ZoneID, state.SupportsCertificateAuthority)
	return state, nil
}

// decodeEndpoint tolerates the integer verify_ssl and string port that some
// API versions return.
func decodeEndpoint(raw map[string]any) (domain.Endpoint, error) {
	norm := make(map[string]any, len(raw))
	for k, v := range raw {
		norm[k] = v
	}
	switch v := norm["verify_ssl"].(type) {
	case float64:
		norm["verify_ssl"] = v != 0
	case string:
		b, err := strconv.ParseBool(v)
		if err == nil {
			norm["verify_ssl"] = b
		} else {
			delete(norm, "verify_ssl")
		}
	}
	if s, ok := norm["port"].(string); ok {
		if p, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			norm["port"] = p
		} else {
			delete(norm, "port")
		}
	}

	var ep domain.Endpoint
	buf, err := json.Marshal(norm)
	if err == nil {
		err = json.Unmarshal(buf, &ep)
	}
	if err != nil {
		return domain.Endpoint{}, errors.WrapAs(err, errors.CodeMalformedResponse, "failed to decode provider endpoint")
	}
	return ep, nil
}

type authenticationsResponse struct {
	Authentications []domain.AuthenticationStatus `json:"authentications"`
}

// AuthValidationDetails returns the provider's authentications keyed by authtype.
func (f *Fetcher) AuthValidationDetails(ctx context.Context, providerID string) (map[string]domain.AuthenticationStatus, error) {
	query := url.Values{}
	query.Set("attributes", "authentications")

	var resp authenticationsResponse
	if err := f.client.Get(ctx, domain.CollectionProviders+"/"+providerID, query, &resp); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport, "failed to get provider authentications")
	}
	out := make(map[string]domain.AuthenticationStatus, len(resp.Authentications))
	for _, a := range resp.Authentications {
		out[a.AuthType] = a
	}
	return out, nil
}

type customAttributesResponse struct {
	CustomAttributes []domain.CustomAttribute `json:"custom_attributes"`
}

func (f *Fetcher) CustomAttributes(ctx context.Context, collection, id string) ([]domain.CustomAttribute, error) {
	query := url.Values{}
	query.Set("expand", "custom_attributes")

	var resp customAttributesResponse
	if err := f.client.Get(ctx, collection+"/"+id, query, &resp); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport,
			fmt.Sprintf("failed to get %s custom attributes", collection))
	}
	return resp.CustomAttributes, nil
}

// AssignedTags returns the full tag names assigned to a resource.
func (f *Fetcher) AssignedTags(ctx context.Context, collection, id string) (map[string]struct{}, error) {
	query := url.Values{}
	query.Set("expand", "resources")

	var resp collectionResponse
	if err := f.client.Get(ctx, collection+"/"+id+"/tags", query, &resp); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport,
			fmt.Sprintf("failed to query %s tags", collection))
	}
	names := make(map[string]struct{}, len(resp.Resources))
	for _, r := range resp.Resources {
		if name, ok := r["name"].(string); ok {
			names[name] = struct{}{}
		}
	}
	return names, nil
}

// AssignedPolicies returns the ids of the policies or policy profiles
// assigned to a resource.
func (f *Fetcher) AssignedPolicies(ctx context.Context, resourceCollection, resourceID, entityCollection string) (map[string]struct{}, error) {
	query := url.Values{}
	query.Set("expand", "resources")

	var resp collectionResponse
	path := resourceCollection + "/" + resourceID + "/" + entityCollection
	if err := f.client.Get(ctx, path, query, &resp); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport,
			fmt.Sprintf("failed to query resource %s", entityCollection))
	}
	ids := make(map[string]struct{}, len(resp.Resources))
	for _, r := range resp.Resources {
		ids[IDString(r["id"])] = struct{}{}
	}
	return ids, nil
}

// RemoteAlert is the comparable part of an alert definition.
type RemoteAlert struct {
	ID          any            `json:"id"`
	Description string         `json:"description"`
	DB          *string        `json:"db"`
	Expression  map[string]any `json:"expression"`
	Options     map[string]any `json:"options"`
	Enabled     *bool          `json:"enabled"`
}

// Alerts lists every alert definition.
func (f *Fetcher) Alerts(ctx context.Context) ([]map[string]any, error) {
	alerts, err := f.client.List(ctx, domain.CollectionAlertDefinitions)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport, "failed to query alerts")
	}
	return alerts, nil
}

func (f *Fetcher) Alert(ctx context.Context, id string) (*RemoteAlert, error) {
	var alert RemoteAlert
	if err := f.client.Get(ctx, domain.CollectionAlertDefinitions+"/"+id, nil, &alert); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport, "failed to get alert details")
	}
	return &alert, nil
}
