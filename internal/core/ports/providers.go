package ports

import (
	"context"
	"net/url"
)

// APIClient is the REST surface of the management platform. Paths are
// relative to the API root; absolute hrefs returned by the server are
// accepted too.
//
//go:generate mockery --name APIClient --output ./mocks --outpkg mocks --case underscore
type APIClient interface {
	BaseURL() string
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, action string, payload map[string]any, out any) error
	List(ctx context.Context, collection string, attributes ...string) ([]map[string]any, error)
}

// CloudCredentials are resolved cloud credentials together with what the
// identity check learned about the caller.
type CloudCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Account         string
	ARN             string
}

// CloudCredentialResolver resolves and checks cloud credentials before they
// are handed to the management platform. Empty keys select the default
// credential chain.
//
//go:generate mockery --name CloudCredentialResolver --output ./mocks --outpkg mocks --case underscore
type CloudCredentialResolver interface {
	Resolve(ctx context.Context, accessKeyID, secretAccessKey, region string) (CloudCredentials, error)
}
