package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cconley717/contact-keeper-manager/internal/apperror"
	"github.com/cconley717/contact-keeper-manager/internal/csvio"
	"github.com/cconley717/contact-keeper-manager/internal/model"
	"github.com/cconley717/contact-keeper-manager/internal/validate"
)

// listClients responds with one page of clients as JSON. It takes the same
// URL parameters as the contact listing.
func (s *Service) listClients(c *gin.Context) {
	params, err := s.listParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	clients, total, err := s.store.ListClients(c.Request.Context(), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, model.ClientPage{
		Data:       clients,
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// createClient validates and inserts a new client. A taken client_id is a
// conflict.
//
// Example REST API call:
//
//	> curl http://localhost:8080/clients --request "POST" --include --header "Content-Type: application/json" --data '{"client_id": "70", "client_name": "Acme Corp"}'
func (s *Service) createClient(c *gin.Context) {
	var in model.ClientInput
	if err := c.BindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	result := validate.Client(in)
	if !result.IsValid {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": strings.Join(result.Errors, "; "),
			"errors":  result.Errors,
		})
		return
	}
	client, err := s.store.CreateClient(c.Request.Context(), result.Client)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, client)
}

// deleteClientByID deletes the client whose internal surrogate row id
// matches the id parameter of the request URL.
func (s *Service) deleteClientByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.DeleteClient(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "client deleted"})
}

// uploadClients runs the bulk importer on the uploaded client CSV file.
func (s *Service) uploadClients(c *gin.Context) {
	data, err := s.uploadFile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()
	summary, err := s.clientImp.Import(ctx, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, summary)
}

// exportClients streams the full client set as a CSV attachment ordered by
// natural key.
func (s *Service) exportClients(c *gin.Context) {
	clients, err := s.store.AllClients(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	buf, err := csvio.ClientsCSV(clients)
	if err != nil {
		s.fail(c, apperror.Wrap(err, apperror.KindInternal, "serialize clients"))
		return
	}
	filename := csvio.Filename("clients", time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf)
}
