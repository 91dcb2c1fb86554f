package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loftline/propgraph/internal/queue"
	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/timing"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// QueueUpdateHandler enqueues a free-text update for asynchronous
// processing. Mode "update" resolves individual instructions against the
// stored graph, mode "rewrite" lets the model rewrite the whole document.
func QueueUpdateHandler(c echo.Context) error {
	type queueUpdateBody struct {
		GraphID string `param:"id" validate:"required"`
		Text    string `json:"text" validate:"required"`
		Mode    string `json:"mode" validate:"omitempty,oneof=update rewrite"`
	}

	type queueUpdateResponse struct {
		Message             string `json:"message"`
		EstimatedDurationMs int64  `json:"estimated_duration_ms,omitempty"`
	}

	data := new(queueUpdateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queueUpdateResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queueUpdateResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, queueUpdateResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	if _, err := storeClient.GetGraph(ctx, data.GraphID); err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return c.JSON(http.StatusNotFound, queueUpdateResponse{
				Message: "Graph not found",
			})
		}
		logger.Error("[Server] Failed to load graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, queueUpdateResponse{
			Message: "Internal server error",
		})
	}

	msg := queue.QueueUpdateMsg{
		Message:    "Graph update queued",
		GraphID:    data.GraphID,
		UpdateText: data.Text,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, queueUpdateResponse{
			Message: "Internal server error",
		})
	}

	queueName := queue.UpdateQueue
	if data.Mode == "rewrite" {
		queueName = queue.RewriteQueue
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queueName, body); err != nil {
		logger.Error("[Server] Failed to publish update", "queue", queueName, "err", err)
		return c.JSON(http.StatusInternalServerError, queueUpdateResponse{
			Message: "Internal server error",
		})
	}

	statType := "update"
	if data.Mode == "rewrite" {
		statType = "rewrite"
	}
	estimate, err := timing.PredictProcessingTime(ctx, conn, statType)
	if err != nil {
		logger.Error("[Server] Failed to predict processing time", "graph", data.GraphID, "err", err)
		estimate = 0
	}

	return c.JSON(http.StatusAccepted, queueUpdateResponse{
		Message:             "Graph update queued",
		EstimatedDurationMs: estimate,
	})
}
