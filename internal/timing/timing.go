package timing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const recordSQL = `
INSERT INTO process_stats (graph_id, amount, duration_ms, stat_type)
VALUES ($1, $2, $3, $4)
`

// Averaged over the most recent runs so old model or hardware changes
// age out of the estimate.
const predictSQL = `
SELECT COALESCE(AVG(duration_ms), 0)::bigint
FROM (
	SELECT duration_ms
	FROM process_stats
	WHERE stat_type = $1
	ORDER BY created_at DESC
	LIMIT 50
) recent
`

// RecordProcessingTime stores how long one queued message took to process.
// Amount carries the instruction count so throughput can be inspected later.
func RecordProcessingTime(
	ctx context.Context,
	conn *pgxpool.Pool,
	graphID string,
	amount int,
	durationMs int64,
	statType string,
) error {
	if _, err := conn.Exec(ctx, recordSQL, graphID, amount, durationMs, statType); err != nil {
		return fmt.Errorf("failed to record processing time: %w", err)
	}
	return nil
}

// PredictProcessingTime estimates how long a newly queued message of the
// given type will take, in milliseconds. Returns 0 when no history exists.
func PredictProcessingTime(ctx context.Context, conn *pgxpool.Pool, statType string) (int64, error) {
	var durationMs int64
	if err := conn.QueryRow(ctx, predictSQL, statType).Scan(&durationMs); err != nil {
		return 0, fmt.Errorf("failed to predict processing time: %w", err)
	}
	return durationMs, nil
}
