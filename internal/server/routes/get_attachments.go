package routes

import (
	"net/http"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/storage"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetAttachmentHandler resolves an attachment key to a presigned download
// link.
func GetAttachmentHandler(c echo.Context) error {
	type getAttachmentParams struct {
		GraphID string `param:"id" validate:"required"`
		FileKey string `query:"file_key" validate:"required"`
	}

	type getAttachmentResponse struct {
		Message string `json:"message"`
		URL     string `json:"url,omitempty"`
	}

	params := new(getAttachmentParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getAttachmentResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getAttachmentResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getAttachmentResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	s3Client := c.(*middleware.AppContext).App.S3

	url, err := storage.GenerateDownloadLink(ctx, s3Client, params.FileKey)
	if err != nil {
		return c.JSON(http.StatusNotFound, getAttachmentResponse{
			Message: "Attachment does not exist",
		})
	}

	return c.JSON(http.StatusOK, getAttachmentResponse{
		Message: "Attachment found",
		URL:     url,
	})
}
