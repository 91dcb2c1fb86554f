package routes

import (
	"errors"
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/storage"
	"github.com/loftline/propgraph/internal/util"
	"github.com/loftline/propgraph/pkg/common"
	"github.com/loftline/propgraph/pkg/graph"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/store"
	storepgx "github.com/loftline/propgraph/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadAttachmentHandler stores a file in S3 and upserts a document or
// photo entity carrying the object key into the graph.
func UploadAttachmentHandler(c echo.Context) error {
	type uploadAttachmentBody struct {
		GraphID    string `param:"id" validate:"required"`
		Collection string `form:"collection" validate:"required,oneof=documents photos"`
		Key        string `form:"key" validate:"required"`
	}

	type uploadAttachmentResponse struct {
		Message string       `json:"message"`
		FileKey string       `json:"file_key,omitempty"`
		Graph   *common.Node `json:"graph,omitempty"`
	}

	data := new(uploadAttachmentBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadAttachmentResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadAttachmentResponse{
			Message: "Invalid request body",
		})
	}

	upload, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadAttachmentResponse{
			Message: "No file provided",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, uploadAttachmentResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	storeClient := storepgx.NewGraphDBStoreWithConnection(conn)

	graphDoc, err := storeClient.GetGraph(ctx, data.GraphID)
	if err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return c.JSON(http.StatusNotFound, uploadAttachmentResponse{
				Message: "Graph not found",
			})
		}
		logger.Error("[Server] Failed to load graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadAttachmentResponse{
			Message: "Internal server error",
		})
	}

	src, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadAttachmentResponse{
			Message: "Could not open file",
		})
	}
	defer src.Close()

	fID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadAttachmentResponse{
			Message: "Internal server error",
		})
	}

	s3Client := c.(*middleware.AppContext).App.S3
	fileKey, err := storage.PutAttachment(ctx, s3Client, data.GraphID, upload.Filename, fID, src)
	if err != nil {
		logger.Error("[Server] Failed to upload attachment", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadAttachmentResponse{
			Message: "Internal server error",
		})
	}

	fields := common.NewNode()
	fields.Set("fileKey", fileKey)
	fields.Set("fileName", upload.Filename)

	engine := graph.NewClient(graph.NewClientParams{})
	_, warnings, err := engine.Upsert(graphDoc, []graph.PathSegment{
		{Collection: data.Collection, Key: data.Key},
	}, fields)
	if err != nil {
		logger.Error("[Server] Failed to upsert attachment entity", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadAttachmentResponse{
			Message: "Internal server error",
		})
	}
	for _, w := range warnings {
		logger.Warn("[Server] Attachment upsert warning", "graph", data.GraphID, "warning", w.String())
	}

	graphDoc, err = graph.LinkIDs(graphDoc)
	if err != nil {
		logger.Error("[Server] Failed to link graph IDs", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadAttachmentResponse{
			Message: "Internal server error",
		})
	}
	util.SanitizeGraphText(graphDoc)

	if err := storeClient.SaveGraph(ctx, data.GraphID, graphDoc); err != nil {
		logger.Error("[Server] Failed to save graph", "graph", data.GraphID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadAttachmentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, uploadAttachmentResponse{
		Message: "Attachment uploaded successfully",
		FileKey: fileKey,
		Graph:   graphDoc,
	})
}
