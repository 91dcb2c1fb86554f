package routes

import (
	"errors"
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/pkg/graph"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetRelationshipsHandler returns the reference edges of a graph,
// grouped by entity type.
func GetRelationshipsHandler(c echo.Context) error {
	type getRelationshipsParams struct {
		GraphID string `param:"id" validate:"required"`
	}

	type getRelationshipsResponse struct {
		Message   string                      `json:"message"`
		Relations map[string][]graph.Relation `json:"relations,omitempty"`
	}

	params := new(getRelationshipsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getRelationshipsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getRelationshipsResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getRelationshipsResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	graphDoc, err := storeClient.GetGraph(ctx, params.GraphID)
	if err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return c.JSON(http.StatusNotFound, getRelationshipsResponse{
				Message: "Graph not found",
			})
		}
		logger.Error("[Server] Failed to load graph", "graph", params.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, getRelationshipsResponse{
			Message: "Internal server error",
		})
	}

	relations, err := graph.Analyze(graphDoc)
	if err != nil {
		logger.Error("[Server] Failed to analyze graph", "graph", params.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, getRelationshipsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getRelationshipsResponse{
		Message:   "Relationships analyzed",
		Relations: relations,
	})
}
