package interfaces

import (
	"context"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// AIClient is the text-completion provider: prompt in, free text out.
// Failures are returned as-is; callers wrap them with models.ErrProvider.
type AIClient interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}
