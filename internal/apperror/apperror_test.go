package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHTTPStatus checks the kind-to-status mapping.
func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(KindValidation, "bad field")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(KindUpload, "no file")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(KindNotFound, "no such contact")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(KindConflict, "duplicate key")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(KindInternal, "boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("untagged")))
}

// TestHTTPStatusWrapped checks that the kind survives fmt.Errorf wrapping.
func TestHTTPStatusWrapped(t *testing.T) {
	err := fmt.Errorf("while deleting: %w", New(KindNotFound, "no such contact"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, KindNotFound, KindOf(err))
}

// TestClientMessage checks that internal error detail never reaches clients.
func TestClientMessage(t *testing.T) {
	assert.Equal(t, "no such contact", ClientMessage(New(KindNotFound, "no such contact")))
	internal := Wrap(errors.New("dial tcp 10.0.0.5:3306: connection refused"), KindInternal, "query failed")
	assert.Equal(t, "internal server error", ClientMessage(internal))
	assert.Equal(t, "internal server error", ClientMessage(errors.New("raw")))
}

// TestUnwrap checks that the cause chain stays intact for errors.Is.
func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, KindInternal, "wrapped")
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, Wrap(nil, KindInternal, "nothing"))
}
