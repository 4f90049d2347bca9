package miq

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const apiSuffix = "/api"

type Options struct {
	URL          string
	Username     string
	Password     string
	VerifySSL    bool
	CABundlePath string
	Timeout      time.Duration
	RateLimit    float64
	Burst        int
}

// Client talks to the ManageIQ REST API with basic auth. Calls are never
// retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	limiter    *Limiter
	logger     ports.Logger
}

var _ ports.APIClient = (*Client)(nil)

func NewClient(opts Options, logger ports.Logger) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "connection url is required", "Set connection.url.")
	}
	base, err := url.Parse(strings.TrimSuffix(opts.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("invalid connection url %q", opts.URL), "Use an absolute http(s) url.")
	}

	tlsConfig, err := newTLSConfig(opts.VerifySSL, opts.CABundlePath)
	if err != nil {
		return nil, err
	}
	transport := cleanhttp.DefaultPooledTransport()
	transport.TLSClientConfig = tlsConfig

	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: opts.Timeout},
		baseURL:    base.String() + apiSuffix,
		username:   opts.Username,
		password:   opts.Password,
		limiter:    NewLimiter(opts.RateLimit, opts.Burst, logger),
		logger:     logger,
	}, nil
}

func newTLSConfig(verify bool, caBundlePath string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if !verify {
		cfg.InsecureSkipVerify = true
		return cfg, nil
	}
	if caBundlePath == "" {
		return cfg, nil
	}
	pem, err := os.ReadFile(caBundlePath)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigReadError,
			fmt.Sprintf("failed to read CA bundle %s", caBundlePath), "Check connection.ca_bundle_path.")
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("CA bundle %s contains no PEM certificates", caBundlePath), "Check connection.ca_bundle_path.")
	}
	cfg.RootCAs = pool
	return cfg, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// resolve accepts both collection-relative paths and absolute hrefs.
func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.resolve(path, query), nil, out)
}

// Post sends payload with "action" set when action is non-empty.
func (c *Client) Post(ctx context.Context, path string, action string, payload map[string]any, out any) error {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	if action != "" {
		body["action"] = action
	}
	return c.do(ctx, http.MethodPost, c.resolve(path, nil), body, out)
}

// List returns every resource of a collection, restricted to attributes
// when given.
func (c *Client) List(ctx context.Context, collection string, attributes ...string) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("expand", "resources")
	if len(attributes) > 0 {
		query.Set("attributes", strings.Join(attributes, ","))
	}
	var resp struct {
		Resources []map[string]any `json:"resources"`
	}
	if err := c.Get(ctx, collection, query, &resp); err != nil {
		return nil, err
	}
	return resp.Resources, nil
}

func (c *Client) do(ctx context.Context, method, target string, requestBody any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return transportError(ctx, method, target, err)
	}

	var bodyReader io.Reader
	if requestBody != nil {
		buf, err := json.Marshal(requestBody)
		if err != nil {
			return errors.WrapAs(err, errors.CodeInternal, "failed to marshal request body")
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return errors.WrapAs(err, errors.CodeInternal, "failed to create HTTP request")
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf(ctx, "API request %s %s", method, target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, method, target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(ctx, method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method, target, resp.StatusCode, respBody)
	}
	c.logger.Debugf(ctx, "API response %s %s: %d", method, target, resp.StatusCode)

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.WrapAs(err, errors.CodeMalformedResponse,
				fmt.Sprintf("failed to decode response of %s %s", method, target))
		}
	}
	return nil
}
