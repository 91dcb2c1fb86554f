package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/loftline/propgraph/internal/timing"
	"github.com/loftline/propgraph/internal/util"
	"github.com/loftline/propgraph/pkg/ai"
	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/graph"
	"github.com/loftline/propgraph/pkg/leaselock"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"
)

// resolveChunkSize bounds how many instructions are resolved against the
// model concurrently.
const resolveChunkSize = 4

// ProcessUpdateMessage runs the instruction pipeline for one queued update:
// load the graph, split the text into instructions, resolve each instruction
// to a target path, apply them through the cascade, then link, compress and
// save. Failed instructions are collected and logged, the rest still apply.
func ProcessUpdateMessage(
	ctx context.Context,
	aiClient ai.UpdateAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueUpdateMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.GraphID == "" {
		return fmt.Errorf("update message missing graph id")
	}

	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	instructions, err := ai.GenerateInstructions(ctx, aiClient, data.UpdateText)
	if err != nil {
		return err
	}
	if len(instructions) == 0 {
		logger.Info("[Queue] Update text produced no instructions", "graph_id", data.GraphID)
		return nil
	}
	logger.Info("[Queue] Applying update", "graph_id", data.GraphID, "instructions", len(instructions))

	start := time.Now()
	lockClient := leaselock.New(conn)
	err = lockClient.WithLease(ctx, "graph:"+data.GraphID, leaselock.Options{
		TTL:        10 * time.Minute,
		RenewEvery: 4 * time.Minute,
		Wait:       true,
	}, func(ctx context.Context) error {
		graphDoc, err := storeClient.GetGraph(ctx, data.GraphID)
		if err != nil {
			return err
		}

		resolved, failed := resolveInstructions(ctx, aiClient, graphDoc, instructions)

		engine := graph.NewClient(graph.NewClientParams{})
		for i, update := range resolved {
			if update == nil {
				continue
			}
			// Upsert mutates graphDoc in place; the returned leaf entity
			// is only useful for callers that need the merge target.
			_, warnings, err := engine.Upsert(graphDoc, update.Path, update.Fields)
			if err != nil {
				failed = append(failed, instructions[i])
				logger.Error("[Queue] Instruction failed", "graph_id", data.GraphID, "instruction", instructions[i], "err", err)
				continue
			}
			for _, warning := range warnings {
				logger.Warn("[Queue] Instruction warning", "graph_id", data.GraphID, "warning", warning.String())
			}
		}

		if len(failed) == len(instructions) {
			return fmt.Errorf("all %d instructions failed for graph %s", len(instructions), data.GraphID)
		}
		if len(failed) > 0 {
			logger.Warn("[Queue] Some instructions failed", "graph_id", data.GraphID, "failed", len(failed), "total", len(instructions))
		}

		return finalizeAndSave(ctx, storeClient, data.GraphID, graphDoc)
	})
	if err != nil {
		return err
	}

	if err := timing.RecordProcessingTime(ctx, conn, data.GraphID, len(instructions), time.Since(start).Milliseconds(), "update"); err != nil {
		logger.Error("[Queue] Failed to record processing time", "graph_id", data.GraphID, "err", err)
	}
	return nil
}

// resolveInstructions maps instructions to cascade paths, chunked so at most
// resolveChunkSize model calls run at once. Instructions that cannot be
// resolved come back in the failed list; resolved keeps input positions.
func resolveInstructions(
	ctx context.Context,
	aiClient ai.UpdateAIClient,
	graphDoc *common.Node,
	instructions []string,
) ([]*ai.ResolvedUpdate, []string) {
	resolved := make([]*ai.ResolvedUpdate, len(instructions))
	failed := []string{}

	_ = store.ChunkRange(len(instructions), resolveChunkSize, func(start, end int) error {
		eg, ectx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			idx := i
			eg.Go(func() error {
				update, err := util.RetryWithContext(ectx, 3, time.Second, func(ctx context.Context) (*ai.ResolvedUpdate, error) {
					return ai.ResolveInstruction(ctx, aiClient, graphDoc, instructions[idx])
				})
				if err != nil {
					logger.Error("[Queue] Failed to resolve instruction", "instruction", instructions[idx], "err", err)
					return nil
				}
				resolved[idx] = update
				return nil
			})
		}
		return eg.Wait()
	})

	for i, update := range resolved {
		if update == nil {
			failed = append(failed, instructions[i])
		}
	}
	return resolved, failed
}

// ProcessRewriteMessage reconciles a queued update through a full document
// rewrite: the model produces a replacement document, and fields the model
// dropped or blanked are filled back from the stored graph before the result
// is linked, compressed and saved.
func ProcessRewriteMessage(
	ctx context.Context,
	aiClient ai.UpdateAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueUpdateMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.GraphID == "" {
		return fmt.Errorf("rewrite message missing graph id")
	}

	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	start := time.Now()
	lockClient := leaselock.New(conn)
	err := lockClient.WithLease(ctx, "graph:"+data.GraphID, leaselock.Options{
		TTL:        10 * time.Minute,
		RenewEvery: 4 * time.Minute,
		Wait:       true,
	}, func(ctx context.Context) error {
		graphDoc, err := storeClient.GetGraph(ctx, data.GraphID)
		if err != nil {
			return err
		}

		rewritten, err := util.RetryWithContext(ctx, 3, time.Second, func(ctx context.Context) (*common.Node, error) {
			return ai.RewriteGraph(ctx, aiClient, graphDoc, data.UpdateText)
		})
		if err != nil {
			return err
		}

		merged, err := graph.MergeGraphs(rewritten, graphDoc, "id")
		if err != nil {
			return err
		}

		return finalizeAndSave(ctx, storeClient, data.GraphID, merged)
	})
	if err != nil {
		return err
	}

	if err := timing.RecordProcessingTime(ctx, conn, data.GraphID, 1, time.Since(start).Milliseconds(), "rewrite"); err != nil {
		logger.Error("[Queue] Failed to record processing time", "graph_id", data.GraphID, "err", err)
	}
	return nil
}

// finalizeAndSave runs the closing passes shared by both pipelines: id
// linking, compression, text sanitation, persistence.
func finalizeAndSave(ctx context.Context, storeClient store.GraphStore, graphID string, graphDoc *common.Node) error {
	linked, err := graph.LinkIDs(graphDoc)
	if err != nil {
		return fmt.Errorf("failed to link ids: %w", err)
	}

	compressed, err := graph.Compress(linked)
	if err != nil {
		return fmt.Errorf("failed to compress graph: %w", err)
	}

	util.SanitizeGraphText(compressed)

	if err := storeClient.SaveGraph(ctx, graphID, compressed); err != nil {
		return fmt.Errorf("failed to save graph %s: %w", graphID, err)
	}

	logger.Info("[Queue] Graph updated", "graph_id", graphID)
	return nil
}
