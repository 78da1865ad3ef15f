package storage

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestGCSObjectStore_Translate(t *testing.T) {
	other := errors.New("dial tcp: connection refused")
	s := &GCSObjectStore{}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"object not exist", gcs.ErrObjectNotExist, ErrObjectNotFound},
		{"wrapped object not exist", fmt.Errorf("reader: %w", gcs.ErrObjectNotExist), ErrObjectNotFound},
		{"api 404", &googleapi.Error{Code: http.StatusNotFound}, ErrObjectNotFound},
		{"api 412", &googleapi.Error{Code: http.StatusPreconditionFailed}, ErrPreconditionFailed},
		{"wrapped api 412", fmt.Errorf("writer: %w", &googleapi.Error{Code: http.StatusPreconditionFailed}), ErrPreconditionFailed},
		{"api 503 passthrough", &googleapi.Error{Code: http.StatusServiceUnavailable}, nil},
		{"other passthrough", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.translate(tt.err)
			if tt.want == nil {
				assert.Equal(t, tt.err, got)
				assert.NotErrorIs(t, got, ErrObjectNotFound)
				assert.NotErrorIs(t, got, ErrPreconditionFailed)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestGCSObjectStore_PublicURL(t *testing.T) {
	s := &GCSObjectStore{opts: GCSOptions{Bucket: "propostas-bucket", PublicBaseURL: "https://storage.googleapis.com"}}

	assert.Equal(t,
		"https://storage.googleapis.com/propostas-bucket/propostas/a%20b.json",
		s.publicURL("propostas/a b.json"))
}
