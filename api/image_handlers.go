package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auctionhouse/adapters/session"
)

// Upload an image, the returned url is used as listing image or avatar
// (POST /api/v1/images)
func (impl *ServerImpl) PostImage(c *gin.Context) {
	const op = "PostImage"
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			failure(c, http.StatusUnprocessableEntity, "Invalid entry", map[string]string{"file": "field required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			handleError(c, op, err)
			return
		}
		defer file.Close()
		body = file
	}
	user, _ := session.GetUser(c)
	image, err := impl.media.Upload(c.Request.Context(), user.ID, body)
	if err != nil {
		handleError(c, op, err)
		return
	}
	success(c, http.StatusCreated, "Image uploaded", imageData{ID: image.ID.String(), URL: image.Url})
}

// Download an image stored in memory
// (GET /media/{key})
func (impl *ServerImpl) GetMedia(c *gin.Context) {
	data, ok := impl.blobs.Get(strings.TrimPrefix(c.Param("key"), "/"))
	if !ok {
		failure(c, http.StatusNotFound, "Image does not exist!", nil)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
