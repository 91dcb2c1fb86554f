package routes

import (
	"encoding/json"
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/logger"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// CreateGraphHandler creates a new graph, optionally seeded with an
// initial document.
func CreateGraphHandler(c echo.Context) error {
	type createGraphBody struct {
		Name  string          `json:"name" validate:"required"`
		Graph json.RawMessage `json:"graph"`
	}

	type createGraphResponse struct {
		Message string `json:"message"`
		GraphID string `json:"graph_id,omitempty"`
	}

	data := new(createGraphBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createGraphResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createGraphResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, createGraphResponse{
			Message: "Unauthorized",
		})
	}

	graphDoc := common.NewNode()
	if len(data.Graph) > 0 {
		parsed, err := common.ParseNode(data.Graph)
		if err != nil {
			return c.JSON(http.StatusBadRequest, createGraphResponse{
				Message: "Invalid graph document",
			})
		}
		graphDoc = parsed
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	graphID, err := storeClient.CreateGraph(ctx, data.Name, graphDoc)
	if err != nil {
		logger.Error("[Server] Failed to create graph", "err", err)
		return c.JSON(http.StatusInternalServerError, createGraphResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, createGraphResponse{
		Message: "Graph created successfully",
		GraphID: graphID,
	})
}
