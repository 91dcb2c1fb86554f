package routes

import (
	"errors"
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/graph"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func GetGraphsHandler(c echo.Context) error {
	type getGraphsResponse struct {
		Message string              `json:"message"`
		Graphs  []store.GraphRecord `json:"graphs,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getGraphsResponse{
			Message: "Unauthorized",
		})
	}

	if !middleware.IsAdmin(user) && !middleware.HasPermission(user, "graph.view:all") {
		return c.JSON(http.StatusForbidden, getGraphsResponse{
			Message: "Forbidden",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	records, err := storeClient.ListGraphs(ctx)
	if err != nil {
		logger.Error("[Server] Failed to list graphs", "err", err)
		return c.JSON(http.StatusInternalServerError, getGraphsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getGraphsResponse{
		Message: "Graphs found",
		Graphs:  records,
	})
}

func GetGraphHandler(c echo.Context) error {
	type getGraphParams struct {
		GraphID    string `param:"id" validate:"required"`
		Compressed bool   `query:"compressed"`
	}

	type getGraphResponse struct {
		Message string       `json:"message"`
		Graph   *common.Node `json:"graph,omitempty"`
	}

	params := new(getGraphParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getGraphResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getGraphResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getGraphResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	graphDoc, err := storeClient.GetGraph(ctx, params.GraphID)
	if err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return c.JSON(http.StatusNotFound, getGraphResponse{
				Message: "Graph not found",
			})
		}
		logger.Error("[Server] Failed to load graph", "graph", params.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, getGraphResponse{
			Message: "Internal server error",
		})
	}

	if params.Compressed {
		graphDoc, err = graph.Compress(graphDoc)
		if err != nil {
			logger.Error("[Server] Failed to compress graph", "graph", params.GraphID, "err", err)
			return c.JSON(http.StatusInternalServerError, getGraphResponse{
				Message: "Internal server error",
			})
		}
	}

	return c.JSON(http.StatusOK, getGraphResponse{
		Message: "Graph found",
		Graph:   graphDoc,
	})
}
