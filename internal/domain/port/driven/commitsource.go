package driven

import (
	"context"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
)

// CommitSource reports the source-control commit the process was built from.
// Callers treat failures as advisory.
type CommitSource interface {
	HeadCommit(ctx context.Context) (model.CommitInfo, error)
}
