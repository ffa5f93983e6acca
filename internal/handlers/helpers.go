package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
	"github.com/sidharth07/verbiforge-sub000/internal/services"
	"github.com/sidharth07/verbiforge-sub000/internal/utils"
)

var errTooLarge = errors.New("upload exceeds the size limit")

// actor returns the authenticated caller or writes a 401.
func actor(c *gin.Context) (models.Actor, bool) {
	a, ok := middlewares.ActorFrom(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
	}
	return a, ok
}

// humanIDParam parses a numeric user id path parameter or writes a 400.
func humanIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseHumanID(c.Param(name))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user ID format")
		return 0, false
	}
	return id, true
}

// readUpload reads a multipart file field of at most maxBytes.
func readUpload(c *gin.Context, field string, maxBytes int64) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%w: form field %q must contain a file", services.ErrInvalidInput, field)
	}
	if fh.Size > maxBytes {
		return "", nil, errTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", nil, errTooLarge
	}
	return fh.Filename, data, nil
}

// uploadFailed writes the response for a readUpload error.
func uploadFailed(c *gin.Context, log *slog.Logger, err error) {
	if errors.Is(err, errTooLarge) {
		responses.Fail(c, http.StatusRequestEntityTooLarge, err, "File too large")
		return
	}
	responses.Error(c, log, err, "Invalid upload")
}

// sendFile streams a stored document as an attachment.
func sendFile(c *gin.Context, dl *services.Download) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	c.Data(http.StatusOK, mimetype.Detect(dl.Data).String(), dl.Data)
}
