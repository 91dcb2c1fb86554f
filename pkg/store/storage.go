package store

import (
	"context"
	"errors"
	"time"

	"github.com/loftline/propgraph/pkg/common"
)

// ErrGraphNotFound is returned when no graph document exists for an id.
var ErrGraphNotFound = errors.New("graph not found")

// GraphRecord is the stored metadata of a graph document.
type GraphRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GraphStore persists property graph documents. The engine never touches the
// store; orchestration loads a document, runs the engine on it, and saves the
// result back.
type GraphStore interface {
	CreateGraph(ctx context.Context, name string, graph *common.Node) (string, error)
	GetGraph(ctx context.Context, id string) (*common.Node, error)
	SaveGraph(ctx context.Context, id string, graph *common.Node) error
	ListGraphs(ctx context.Context) ([]GraphRecord, error)
	DeleteGraph(ctx context.Context, id string) error
}

// ChunkRange invokes fn over [start,end) windows of at most chunkSize until
// total is covered or fn fails.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
