package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

// Locator resolves display names to remote ids. Ids are never cached:
// every call asks the remote side again.
type Locator struct {
	client ports.APIClient
	logger ports.Logger
}

func NewLocator(client ports.APIClient, logger ports.Logger) *Locator {
	return &Locator{client: client, logger: logger}
}

type collectionResponse struct {
	Resources []map[string]any `json:"resources"`
}

// Find lists collection and returns the first resource whose field equals
// value exactly. A miss is reported through the bool, never as an error.
func (l *Locator) Find(ctx context.Context, collection, field, value string) (map[string]any, bool, error) {
	resources, err := l.client.List(ctx, collection)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeTransport,
			fmt.Sprintf("failed to find resource in %s", collection))
	}

	for _, r := range resources {
		if v, ok := r[field].(string); ok && v == value {
			l.logger.Debugf(ctx, "Resolved %s %s=%q to id %s", collection, field, value, IDString(r["id"]))
			return r, true, nil
		}
	}
	return nil, false, nil
}

// FindID is Find reduced to the resource id.
func (l *Locator) FindID(ctx context.Context, collection, field, value string) (string, bool, error) {
	r, found, err := l.Find(ctx, collection, field, value)
	if err != nil || !found {
		return "", found, err
	}
	id := IDString(r["id"])
	if id == "" {
		return "", false, errors.New(errors.CodeMalformedResponse,
			fmt.Sprintf("resource %q in %s has no id", value, collection))
	}
	return id, true, nil
}

// FindByName looks up a resource by its name field.
func (l *Locator) FindByName(ctx context.Context, collection, name string) (string, bool, error) {
	return l.FindID(ctx, collection, "name", name)
}

// IDString normalises a JSON id, which older API versions send as a
// number and newer ones as a string.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
