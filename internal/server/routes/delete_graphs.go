package routes

import (
	"errors"
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/storage"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func DeleteGraphHandler(c echo.Context) error {
	type deleteGraphParams struct {
		GraphID string `param:"id" validate:"required"`
	}

	type deleteGraphResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteGraphParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteGraphResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, deleteGraphResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	if err := storeClient.DeleteGraph(ctx, params.GraphID); err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return c.JSON(http.StatusNotFound, deleteGraphResponse{
				Message: "Graph not found",
			})
		}
		logger.Error("[Server] Failed to delete graph", "graph", params.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteGraphResponse{
			Message: "Internal server error",
		})
	}

	s3Client := c.(*middleware.AppContext).App.S3
	if err := storage.DeleteAttachments(ctx, s3Client, params.GraphID); err != nil {
		logger.Error("[Server] Failed to delete attachments", "graph", params.GraphID, "err", err)
	}

	return c.JSON(http.StatusOK, deleteGraphResponse{
		Message: "Graph deleted successfully",
	})
}
