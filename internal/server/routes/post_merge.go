package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/util"
	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/graph"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// MergeGraphHandler merges an uploaded graph fragment into a stored
// graph. The stored graph wins on conflicts; the fragment only fills
// fields the stored graph is missing or left empty.
func MergeGraphHandler(c echo.Context) error {
	type mergeGraphBody struct {
		GraphID  string          `param:"id" validate:"required"`
		Graph    json.RawMessage `json:"graph" validate:"required"`
		KeyField string          `json:"key_field"`
	}

	type mergeGraphResponse struct {
		Message string       `json:"message"`
		Graph   *common.Node `json:"graph,omitempty"`
	}

	data := new(mergeGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, mergeGraphResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, mergeGraphResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, mergeGraphResponse{
			Message: "Unauthorized",
		})
	}

	incoming, err := common.ParseNode(data.Graph)
	if err != nil {
		return c.JSON(http.StatusBadRequest, mergeGraphResponse{
			Message: "Invalid graph document",
		})
	}

	keyField := data.KeyField
	if keyField == "" {
		keyField = "id"
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	graphDoc, err := storeClient.GetGraph(ctx, data.GraphID)
	if err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return c.JSON(http.StatusNotFound, mergeGraphResponse{
				Message: "Graph not found",
			})
		}
		logger.Error("[Server] Failed to load graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, mergeGraphResponse{
			Message: "Internal server error",
		})
	}

	merged, err := graph.MergeGraphs(graphDoc, incoming, keyField)
	if err != nil {
		logger.Error("[Server] Failed to merge graphs", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, mergeGraphResponse{
			Message: "Internal server error",
		})
	}

	merged, err = graph.LinkIDs(merged)
	if err != nil {
		logger.Error("[Server] Failed to link graph IDs", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, mergeGraphResponse{
			Message: "Internal server error",
		})
	}

	merged, err = graph.Compress(merged)
	if err != nil {
		logger.Error("[Server] Failed to compress graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, mergeGraphResponse{
			Message: "Internal server error",
		})
	}
	util.SanitizeGraphText(merged)

	if err := storeClient.SaveGraph(ctx, data.GraphID, merged); err != nil {
		logger.Error("[Server] Failed to save graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, mergeGraphResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, mergeGraphResponse{
		Message: "Graphs merged successfully",
		Graph:   merged,
	})
}
