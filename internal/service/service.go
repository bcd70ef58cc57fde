// Package service is the HTTP layer: routing, request parsing and the
// mapping of error kinds to status codes. All persistence goes through the
// injected Store.
package service

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cconley717/contact-keeper-manager/internal/apperror"
	"github.com/cconley717/contact-keeper-manager/internal/config"
	"github.com/cconley717/contact-keeper-manager/internal/importer"
	"github.com/cconley717/contact-keeper-manager/internal/store"
)

// Service bundles the dependencies of the HTTP handlers.
type Service struct {
	store      *store.Store
	cfg        config.Config
	log        *zap.Logger
	contactImp *importer.ContactImporter
	clientImp  *importer.ClientImporter
}

// New creates the service around an already connected store.
func New(st *store.Store, cfg config.Config, log *zap.Logger) *Service {
	return &Service{
		store:      st,
		cfg:        cfg,
		log:        log,
		contactImp: importer.NewContactImporter(st, cfg.BatchCap),
		clientImp:  importer.NewClientImporter(st, cfg.BatchCap),
	}
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints.
func (s *Service) SetupHttpRouter() *gin.Engine {
	router := gin.New()
	router.Use(s.requestID(), s.requestLog(), gin.Recovery())

	router.GET("/contacts", s.listContacts)
	router.POST("/contacts", s.createContact)
	router.GET("/contacts/:id", s.findContactByID)
	router.PUT("/contacts/:id", s.updateContactByID)
	router.DELETE("/contacts/:id", s.deleteContactByID)
	router.POST("/contacts/upload", s.uploadContacts)
	router.GET("/contacts/export", s.exportContacts)

	router.GET("/clients", s.listClients)
	router.POST("/clients", s.createClient)
	router.DELETE("/clients/:id", s.deleteClientByID)
	router.POST("/clients/upload", s.uploadClients)
	router.GET("/clients/export", s.exportClients)

	return router
}

// requestID assigns each request a correlation id, echoed in the response
// and attached to every log line.
func (s *Service) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLog writes one structured line per request.
func (s *Service) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// fail reports err to the client according to its kind. Internal detail is
// logged here and never included in the response body.
func (s *Service) fail(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperror.ClientMessage(err)})
}

// listParams reads the shared pagination/search/sort URL parameters. Page and
// pageSize must be positive integers; pageSize is clamped to the configured
// maximum.
func (s *Service) listParams(c *gin.Context) (store.ListParams, error) {
	p := store.ListParams{
		Page:      1,
		PageSize:  s.cfg.PageSizeDef,
		Search:    c.Query("search"),
		SortField: c.Query("sortField"),
		SortOrder: c.Query("sortOrder"),
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperror.Newf(apperror.KindValidation, "invalid page parameter '%s'", raw)
		}
		p.Page = n
	}
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperror.Newf(apperror.KindValidation, "invalid pageSize parameter '%s'", raw)
		}
		if n > s.cfg.PageSizeMax {
			n = s.cfg.PageSizeMax
		}
		p.PageSize = n
	}
	return p, nil
}

// pathID reads a positive integer id from the request path.
func pathID(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.Newf(apperror.KindValidation, "invalid id parameter '%s'", raw)
	}
	return id, nil
}

// uploadFile reads the multipart file field, enforcing the size limit before
// any parsing happens.
func (s *Service) uploadFile(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperror.New(apperror.KindUpload, "no file attached")
	}
	if fileHeader.Size > s.cfg.MaxUploadBytes {
		return nil, apperror.Newf(apperror.KindUpload,
			"file exceeds the maximum upload size of %d bytes", s.cfg.MaxUploadBytes)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindUpload, "could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindUpload, "could not read uploaded file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, apperror.Newf(apperror.KindUpload,
			"file exceeds the maximum upload size of %d bytes", s.cfg.MaxUploadBytes)
	}
	return data, nil
}
