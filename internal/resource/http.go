package resource

import (
	"errors"
	"net/http"

	"github.com/abduss/studynotes/internal/auth"
	"github.com/abduss/studynotes/internal/logger"
	"github.com/abduss/studynotes/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// multipartOverhead is the body allowance on top of the file cap for
// boundaries, part headers and the text fields.
const multipartOverhead = 1 << 20

// Client-facing messages. Causes are logged, never returned.
const (
	msgNoFile       = "No file uploaded"
	msgTooLarge     = "File too large"
	msgUploadFailed = "Upload failed"
	msgFetchFailed  = "Failed to fetch files"
	msgNotFound     = "File not found"
	msgInvalidID    = "Invalid file id"
	msgDeleteFailed = "Failed to delete file"
)

// RegisterRoutes mounts the flat contract under api (/api/files...) and the
// grouped browse contract under browse (/files...). guard runs before the
// delete handlers.
func RegisterRoutes(api, browse *gin.RouterGroup, service *Service, log *zap.Logger, guard ...gin.HandlerFunc) {
	handler := &httpHandler{service: service, logger: log}
	deleteChain := append(append([]gin.HandlerFunc{}, guard...), handler.deleteResource)

	api.POST("/files", handler.uploadResource)
	api.GET("/files", handler.listByYear)
	api.GET("/files/:id", handler.getResource)
	api.DELETE("/files/:id", deleteChain...)

	browse.GET("/files", handler.listGrouped)
	browse.GET("/files/:id", handler.getResource)
	browse.DELETE("/files/:id", deleteChain...)
}

type httpHandler struct {
	service *Service
	logger  *zap.Logger
}

func (h *httpHandler) uploadResource(c *gin.Context) {
	log := logger.FromContext(c, h.logger)
	if limit := h.service.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		metrics.ObserveUpload(metrics.UploadRejected)
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": msgTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msgNoFile})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("open multipart file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgUploadFailed})
		return
	}
	defer file.Close()

	res, err := h.service.Upload(c.Request.Context(), Upload{
		Fields: Fields{
			Title:   c.PostForm("title"),
			Year:    c.PostForm("year"),
			Subject: c.PostForm("subject"),
			Course:  c.PostForm("course"),
			Type:    c.PostForm("type"),
			Folder:  c.PostForm("folder"),
		},
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgNoFile})
		case errors.Is(err, ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": msgTooLarge})
		default:
			log.Error("upload resource", zap.String("filename", fileHeader.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgUploadFailed})
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// listByYear serves GET /api/files?year=Y. Without a year parameter nothing
// matches and the result is an empty array.
func (h *httpHandler) listByYear(c *gin.Context) {
	year, ok := c.GetQuery("year")
	if !ok {
		c.JSON(http.StatusOK, []Resource{})
		return
	}

	list, err := h.service.ListByYear(c.Request.Context(), year)
	if err != nil {
		logger.FromContext(c, h.logger).Error("list resources by year", zap.String("year", year), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *httpHandler) listGrouped(c *gin.Context) {
	var year *string
	if y, ok := c.GetQuery("year"); ok {
		year = &y
	}

	grouped, err := h.service.ListGrouped(c.Request.Context(), year)
	if err != nil {
		logger.FromContext(c, h.logger).Error("list grouped resources", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}

	c.JSON(http.StatusOK, grouped)
}

func (h *httpHandler) getResource(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidID})
		return
	}

	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		logger.FromContext(c, h.logger).Error("get resource", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *httpHandler) deleteResource(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidID})
		return
	}

	log := logger.FromContext(c, h.logger).With(zap.String("resource_id", id.String()))
	if admin, ok := auth.CurrentAdmin(c); ok {
		log = log.With(zap.String("admin", admin.Subject))
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		log.Error("delete resource", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgDeleteFailed})
		return
	}

	log.Info("resource deleted")
	c.Status(http.StatusNoContent)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
