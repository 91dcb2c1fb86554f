package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStore implements store.GraphStore on PostgreSQL, holding each graph
// as a jsonb document next to its metadata.
type GraphDBStore struct {
	conn pgxIConn
}

// NewGraphDBStoreWithConnection creates a GraphDBStore using an existing
// database connection or pool. The schema must already be migrated.
func NewGraphDBStoreWithConnection(conn pgxIConn) *GraphDBStore {
	return &GraphDBStore{conn: conn}
}

const insertGraphSQL = `
INSERT INTO graphs (public_id, name, document)
VALUES ($1, $2, $3);
`

// CreateGraph stores a new graph document and returns its generated id.
func (s *GraphDBStore) CreateGraph(ctx context.Context, name string, graph *common.Node) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	document, err := graph.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize graph: %w", err)
	}

	if _, err := s.conn.Exec(ctx, insertGraphSQL, id, name, document); err != nil {
		return "", fmt.Errorf("failed to insert graph: %w", err)
	}

	logger.Debug("[Store] Created graph", "id", id, "name", name)
	return id, nil
}

const getGraphSQL = `
SELECT document FROM graphs WHERE public_id = $1;
`

// GetGraph loads the graph document for id.
func (s *GraphDBStore) GetGraph(ctx context.Context, id string) (*common.Node, error) {
	var document []byte
	err := s.conn.QueryRow(ctx, getGraphSQL, id).Scan(&document)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, store.ErrGraphNotFound
		}
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	graph, err := common.ParseNode(document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored graph %s: %w", id, err)
	}
	return graph, nil
}

const saveGraphSQL = `
UPDATE graphs SET document = $2, updated_at = now() WHERE public_id = $1;
`

// SaveGraph replaces the stored document for id.
func (s *GraphDBStore) SaveGraph(ctx context.Context, id string, graph *common.Node) error {
	document, err := graph.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize graph: %w", err)
	}

	tag, err := s.conn.Exec(ctx, saveGraphSQL, id, document)
	if err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrGraphNotFound
	}
	return nil
}

const listGraphsSQL = `
SELECT public_id, name, created_at, updated_at FROM graphs ORDER BY created_at;
`

// ListGraphs returns metadata for every stored graph.
func (s *GraphDBStore) ListGraphs(ctx context.Context) ([]store.GraphRecord, error) {
	rows, err := s.conn.Query(ctx, listGraphsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	records := []store.GraphRecord{}
	for rows.Next() {
		var record store.GraphRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

const deleteGraphSQL = `
DELETE FROM graphs WHERE public_id = $1;
`

// DeleteGraph removes the graph document for id.
func (s *GraphDBStore) DeleteGraph(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, deleteGraphSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrGraphNotFound
	}
	return nil
}
