package service

import (
	"context"
	"fmt"
	"os"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

const defaultZone = "default"

type ProviderReconciler struct {
	client   ports.APIClient
	locator  *Locator
	fetcher  *Fetcher
	poller   *ValidationPoller
	cloud    ports.CloudCredentialResolver
	readFile func(string) ([]byte, error)
	logger   ports.Logger
}

type ProviderOption func(*ProviderReconciler)

// WithCloudCredentialResolver enables the amazon credential pre-flight.
func WithCloudCredentialResolver(r ports.CloudCredentialResolver) ProviderOption {
	return func(p *ProviderReconciler) { p.cloud = r }
}

func WithFileReader(read func(string) ([]byte, error)) ProviderOption {
	return func(p *ProviderReconciler) { p.readFile = read }
}

func NewProviderReconciler(client ports.APIClient, locator *Locator, fetcher *Fetcher, poller *ValidationPoller, logger ports.Logger, opts ...ProviderOption) *ProviderReconciler {
	r := &ProviderReconciler{
		client:   client,
		locator:  locator,
		fetcher:  fetcher,
		poller:   poller,
		readFile: os.ReadFile,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ProviderReconciler) Kind() domain.ReconcileKind {
	return domain.KindProvider
}

func (r *ProviderReconciler) Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	p, ok := spec.(*config.ProviderSpec)
	if !ok {
		return domain.Result{}, errors.Newf(errors.CodeInternal, "provider reconciler received %T", spec)
	}
	if p.State == domain.StateAbsent {
		return r.Delete(ctx, p.Name)
	}
	cfgs, err := r.BuildConnectionConfigurations(ctx, p)
	if err != nil {
		return domain.Result{Kind: domain.KindProvider, Name: p.Name}, err
	}
	return r.AddOrUpdate(ctx, p, cfgs)
}

// BuildConnectionConfigurations turns a provider spec into the desired
// endpoint and authentication list.
func (r *ProviderReconciler) BuildConnectionConfigurations(ctx context.Context, p *config.ProviderSpec) ([]domain.ConnectionConfiguration, error) {
	switch p.Type {
	case domain.ProviderOpenshiftOrigin, domain.ProviderOpenshiftEnterprise:
		primary, err := r.authKeyConfig(domain.RoleDefault, domain.AuthTypeBearer, p.Hostname, p.Port, p)
		if err != nil {
			return nil, err
		}
		cfgs := []domain.ConnectionConfiguration{primary}
		if p.Monitoring != "" {
			monitoring, err := r.authKeyConfig(p.Monitoring, p.Monitoring, p.MonitoringHostname, p.MonitoringPort, p)
			if err != nil {
				return nil, err
			}
			cfgs = append(cfgs, monitoring)
		}
		return cfgs, nil

	case domain.ProviderHawkularDatawarehouse:
		primary, err := r.authKeyConfig(domain.RoleDefault, domain.AuthTypeDefault, p.Hostname, p.Port, p)
		if err != nil {
			return nil, err
		}
		return []domain.ConnectionConfiguration{primary}, nil

	case domain.ProviderOvirt:
		ep := domain.Endpoint{Role: domain.RoleDefault}
		if p.Hostname != "" {
			ep.Hostname = domain.StringPtr(p.Hostname)
		}
		if p.Port != 0 {
			ep.Port = domain.IntPtr(p.Port)
		}
		return []domain.ConnectionConfiguration{{
			Endpoint: ep,
			Authentication: domain.Authentication{
				AuthType: domain.AuthTypeDefault,
				UserID:   p.Username,
				Password: p.Password,
			},
		}}, nil

	case domain.ProviderAmazon:
		creds, err := r.amazonCredentials(ctx, p)
		if err != nil {
			return nil, err
		}
		return []domain.ConnectionConfiguration{{
			Endpoint: domain.Endpoint{Role: domain.RoleDefault},
			Authentication: domain.Authentication{
				AuthType: domain.AuthTypeDefault,
				UserID:   creds.AccessKeyID,
				Password: creds.SecretAccessKey,
			},
		}}, nil
	}
	return nil, errors.NewUserFacing(errors.CodeConfigValidation,
		fmt.Sprintf("unsupported provider type %q", p.Type), "")
}

// authKeyConfig builds a token-authenticated endpoint. Without a CA path
// the certificate authority is explicitly cleared.
func (r *ProviderReconciler) authKeyConfig(role, authType, hostname string, port int, p *config.ProviderSpec) (domain.ConnectionConfiguration, error) {
	verify := p.VerifiesSSL()
	ep := domain.Endpoint{
		Role: role,
		EndpointAttributes: domain.EndpointAttributes{
			Hostname:             domain.StringPtr(hostname),
			Port:                 domain.IntPtr(port),
			VerifySSL:            domain.BoolPtr(verify),
			CertificateAuthority: domain.PEMPtr(""),
			SecurityProtocol:     domain.SecurityProtocolPtr(domain.DeriveSecurityProtocol(verify, p.CAPath != "")),
		},
	}
	if p.CAPath != "" {
		content, err := r.readFile(p.CAPath)
		if err != nil {
			return domain.ConnectionConfiguration{}, errors.WrapUserFacing(err, errors.CodeDesiredReadError,
				fmt.Sprintf("failed to read certificate authority file %s", p.CAPath), "Check ca_path.")
		}
		ep.CertificateAuthority = domain.PEMPtr(string(content))
	}
	return domain.ConnectionConfiguration{
		Endpoint:       ep,
		Authentication: domain.Authentication{AuthType: authType, AuthKey: p.Token},
	}, nil
}

func (r *ProviderReconciler) amazonCredentials(ctx context.Context, p *config.ProviderSpec) (ports.CloudCredentials, error) {
	creds := ports.CloudCredentials{
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey,
		Region:          p.Region,
	}
	if r.cloud == nil {
		if creds.AccessKeyID == "" {
			return creds, errors.NewUserFacing(errors.CodeCloudCredentials,
				fmt.Sprintf("provider %s has no amazon credentials", p.Name),
				"Set access_key_id and secret_access_key, or enable settings.amazon.preflight to use the AWS credential chain.")
		}
		return creds, nil
	}
	resolved, err := r.cloud.Resolve(ctx, p.AccessKeyID, p.SecretAccessKey, p.Region)
	if err != nil {
		return creds, errors.Wrap(err, errors.CodeCloudCredentials,
			fmt.Sprintf("amazon credential check for provider %s failed", p.Name))
	}
	r.logger.WithFields(map[string]any{"provider": p.Name, "account": resolved.Account}).
		Infof(ctx, "Amazon credentials verified as %s", resolved.ARN)
	return resolved, nil
}

// AddOrUpdate converges an existing provider or creates a missing one,
// then validates authentications and refreshes inventory.
func (r *ProviderReconciler) AddOrUpdate(ctx context.Context, p *config.ProviderSpec, cfgs []domain.ConnectionConfiguration) (domain.Result, error) {
	res := domain.Result{Kind: domain.KindProvider, Name: p.Name}
	log := r.logger.WithFields(map[string]any{"provider": p.Name, "provider_type": string(p.Type)})

	zone := p.Zone
	if zone == "" {
		zone = defaultZone
	}
	zoneID, found, err := r.locator.FindByName(ctx, domain.CollectionZones, zone)
	if err != nil {
		return res, err
	}
	if !found {
		return res, errors.NewUserFacing(errors.CodeLookupFailed,
			fmt.Sprintf("zone %s does not exist in manageiq", zone), "Create the zone or fix the zone name.")
	}

	var region *string
	if p.Region != "" {
		region = domain.StringPtr(p.Region)
	}

	providerID, exists, err := r.locator.FindByName(ctx, domain.CollectionProviders, p.Name)
	if err != nil {
		return res, err
	}

	var (
		operation        string
		before           map[string]domain.AuthenticationStatus
		rolesWithChanges map[string]struct{}
	)

	if exists {
		res.ID = providerID
		current, err := r.fetcher.ProviderState(ctx, providerID)
		if err != nil {
			return res, err
		}
		FilterUnsupportedFields(cfgs, current.SupportsCertificateAuthority)

		updates := ProviderChangeset(cfgs, current, zoneID, region)
		if updates.IsEmpty() {
			res.Message = fmt.Sprintf("Provider %s already exists", p.Name)
			log.Infof(ctx, "Provider is up to date")
			return res, nil
		}
		res.Updates = updates

		before, err = r.fetcher.AuthValidationDetails(ctx, providerID)
		if err != nil {
			return res, err
		}
		operation = "update"
		log.Infof(ctx, "Updating provider, changed roles: %v", updates.ChangedKeys())
		if err := r.edit(ctx, providerID, cfgs, zoneID, region); err != nil {
			return res, err
		}
		res.Changed = true
		rolesWithChanges = make(map[string]struct{})
		for _, k := range updates.ChangedKeys() {
			rolesWithChanges[k] = struct{}{}
		}
	} else {
		FilterUnsupportedFields(cfgs, false)
		operation = "addition"
		log.Infof(ctx, "Creating provider")
		providerID, err = r.create(ctx, p, cfgs, zoneID, region)
		if err != nil {
			return res, err
		}
		res.ID = providerID
		res.Changed = true
		before = map[string]domain.AuthenticationStatus{}
		rolesWithChanges = make(map[string]struct{}, len(cfgs))
		for _, role := range domain.Roles(cfgs) {
			rolesWithChanges[role] = struct{}{}
		}
	}

	report := domain.ValidationReport{Outcome: domain.ValidationSkipped}
	if p.ShouldValidate() {
		var authtypes []string
		for _, c := range cfgs {
			if _, touched := rolesWithChanges[c.Endpoint.Role]; !touched {
				continue
			}
			if domain.SkipsValidation(c.Authentication.AuthType) {
				continue
			}
			authtypes = append(authtypes, c.Authentication.AuthType)
		}
		report, err = r.poller.Poll(ctx, providerID, before, authtypes)
		if err != nil {
			return res, err
		}
	}
	res.Validation = &report

	switch report.Outcome {
	case domain.ValidationInvalid:
		return res, errors.NewUserFacing(errors.CodeValidationFailed,
			fmt.Sprintf("Failed to Validate provider authentication after %s. details: %s", operation, report.Summary()),
			"Check the provider credentials and endpoint settings.")
	case domain.ValidationTimedOut:
		res.Message = fmt.Sprintf("Provider %s validation after %s timed out. Authentication: %s",
			p.Name, operation, report.Summary())
		log.Warnf(ctx, "Authentication validation timed out")
		return res, nil
	}

	if p.ShouldRefresh() {
		if err := r.refresh(ctx, providerID); err != nil {
			return res, err
		}
		res.Message = fmt.Sprintf("Successful %s of %s provider. Authentication: %s. Refreshing provider inventory",
			operation, p.Name, report.Summary())
	} else {
		res.Message = fmt.Sprintf("Successful %s of %s provider. Authentication: %s.",
			operation, p.Name, report.Summary())
	}
	return res, nil
}

type createResponse struct {
	Results []map[string]any `json:"results"`
}

func (r *ProviderReconciler) create(ctx context.Context, p *config.ProviderSpec, cfgs []domain.ConnectionConfiguration, zoneID string, region *string) (string, error) {
	class, _ := p.Type.RemoteClass()
	payload := map[string]any{
		"name":                      p.Name,
		"type":                      class,
		"zone":                      map[string]any{"id": zoneID},
		"connection_configurations": cfgs,
		"provider_region":           region,
	}
	var resp createResponse
	if err := r.client.Post(ctx, domain.CollectionProviders, "", payload, &resp); err != nil {
		return "", errors.Wrap(err, errors.CodeTransport, "failed to add provider")
	}
	if len(resp.Results) == 0 || IDString(resp.Results[0]["id"]) == "" {
		return "", errors.New(errors.CodeMalformedResponse, "failed to add provider: response carries no id")
	}
	return IDString(resp.Results[0]["id"]), nil
}

func (r *ProviderReconciler) edit(ctx context.Context, id string, cfgs []domain.ConnectionConfiguration, zoneID string, region *string) error {
	payload := map[string]any{
		"zone":                      map[string]any{"id": zoneID},
		"connection_configurations": cfgs,
		"provider_region":           region,
	}
	if err := r.client.Post(ctx, domain.CollectionProviders+"/"+id, "edit", payload, nil); err != nil {
		return errors.Wrap(err, errors.CodeTransport, "failed to update provider")
	}
	return nil
}

func (r *ProviderReconciler) refresh(ctx context.Context, id string) error {
	if err := r.client.Post(ctx, domain.CollectionProviders+"/"+id, "refresh", nil, nil); err != nil {
		return errors.Wrap(err, errors.CodeTransport, "failed to refresh provider")
	}
	return nil
}

// Delete removes the named provider. A missing provider is a no-op. A
// structured failure from the remote side is reported, not raised.
func (r *ProviderReconciler) Delete(ctx context.Context, name string) (domain.Result, error) {
	res := domain.Result{Kind: domain.KindProvider, Name: name}

	id, found, err := r.locator.FindByName(ctx, domain.CollectionProviders, name)
	if err != nil {
		return res, err
	}
	if !found {
		res.Message = fmt.Sprintf("Provider %s doesn't exist", name)
		return res, nil
	}
	res.ID = id

	var resp map[string]any
	if err := r.client.Post(ctx, domain.CollectionProviders+"/"+id, "delete", nil, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("failed to delete %s provider", name))
	}
	if ok, _ := resp["success"].(bool); !ok {
		res.APIError = resp
		res.Message = fmt.Sprintf("Failed to delete %s provider", name)
		r.logger.Warnf(ctx, "Delete of provider %s rejected: %v", name, resp["message"])
		return res, nil
	}
	res.Changed = true
	res.TaskID = IDString(resp["task_id"])
	res.Message, _ = resp["message"].(string)
	return res, nil
}
