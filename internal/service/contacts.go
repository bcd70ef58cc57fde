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

// listContacts responds with one page of contacts as JSON.
//
// URL parameters: 'page' and 'pageSize' select the page, 'search' matches a
// case-insensitive substring across all columns, 'sortField' picks the sort
// column (unknown values fall back to contact_id) and 'sortOrder' is 'asc'
// or 'desc'.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?page=2&pageSize=50"
//	> curl "http://localhost:8080/contacts?search=smith&sortField=last_name&sortOrder=desc"
func (s *Service) listContacts(c *gin.Context) {
	params, err := s.listParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	contacts, total, err := s.store.ListContacts(c.Request.Context(), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, model.ContactPage{
		Data:       contacts,
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize,
	})
}

// createContact sanitizes, validates and upserts the contact specified in
// the request's JSON, keyed by contact_id. It responds with CREATED for a
// new natural key and OK when an existing record was updated.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"contact_id": "101", "first_name": "Jane", "last_name": "Doe", "contact_created_date": "1/15/2024"}'
func (s *Service) createContact(c *gin.Context) {
	var in model.ContactInput
	if err := c.BindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	result := validate.Contact(in)
	if !result.IsValid {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": strings.Join(result.Errors, "; "),
			"errors":  result.Errors,
		})
		return
	}
	created, err := s.store.UpsertContact(c.Request.Context(), result.Contact)
	if err != nil {
		s.fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.IndentedJSON(status, result.Contact)
}

// findContactByID locates the contact whose natural key matches the id
// parameter of the request URL, then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/101
func (s *Service) findContactByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	contact, err := s.store.GetContact(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// updateContactByID replaces the contact stored under the id path parameter
// with the submitted record. Changing the natural key is allowed as long as
// the new key does not collide with a different row.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/101 --request "PUT" --include --header "Content-Type: application/json" --data '{"contact_id": "101", "first_name": "Jane", "last_name": "Doe-Smith", "contact_created_date": "1/15/2024"}'
func (s *Service) updateContactByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var in model.ContactInput
	if err := c.BindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	result := validate.Contact(in)
	if !result.IsValid {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": strings.Join(result.Errors, "; "),
			"errors":  result.Errors,
		})
		return
	}
	if err := s.store.ReplaceContact(c.Request.Context(), id, result.Contact); err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, result.Contact)
}

// deleteContactByID deletes the contact whose natural key matches the id
// parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/101 --request "DELETE"
func (s *Service) deleteContactByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.store.DeleteContact(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// uploadContacts runs the bulk importer on the uploaded CSV file and
// responds with the import summary. Row-level defects appear in the
// summary's errors list; only a missing/oversized file, an unparsable byte
// stream or a storage failure fails the request.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/upload --form "file=@contacts.csv"
func (s *Service) uploadContacts(c *gin.Context) {
	data, err := s.uploadFile(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()
	summary, err := s.contactImp.Import(ctx, data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, summary)
}

// exportContacts streams the full contact set as a CSV attachment ordered by
// natural key.
//
// Example REST API call:
//
//	> curl --remote-name --remote-header-name http://localhost:8080/contacts/export
func (s *Service) exportContacts(c *gin.Context) {
	contacts, err := s.store.AllContacts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	buf, err := csvio.ContactsCSV(contacts)
	if err != nil {
		s.fail(c, apperror.Wrap(err, apperror.KindInternal, "serialize contacts"))
		return
	}
	filename := csvio.Filename("contacts", time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf)
}
