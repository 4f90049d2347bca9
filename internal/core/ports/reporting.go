package ports

import (
	"context"

	"github.com/olusolaa/miq-converge/internal/core/domain"
)

//go:generate mockery --name Reporter --output ./mocks --outpkg mocks --case underscore
type Reporter interface {
	Report(ctx context.Context, summary domain.Summary) error
}
