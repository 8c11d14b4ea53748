package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		segments []string
		ok       bool
	}{
		{"root", "/v1/api", []string{}, true},
		{"root trailing slash", "/v1/api/", []string{}, true},
		{"collection", "/v1/api/artists", []string{"artists"}, true},
		{"item trailing slash", "/v1/api/artists/7/", []string{"artists", "7"}, true},
		{"query string", "/v1/api/artists?s=ac", []string{"artists"}, true},
		{"mount directory", "/apps/crud/v1/api/artists/7", []string{"artists", "7"}, true},
		{"empty segments", "/v1/api//artists//7", []string{"artists", "7"}, true},
		{"nested", "/v1/api/artists/7/albums", []string{"artists", "7", "albums"}, true},
		{"prefix not on boundary", "/v1/apiary/artists", nil, false},
		{"boundary after false match", "/v1/apix/v1/api/projects", []string{"projects"}, true},
		{"missing prefix", "/artists", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, ok := ParsePath(tt.path, "/v1/api")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.segments, segments)
		})
	}
}

func TestParsePath_NormalizesBasePath(t *testing.T) {
	segments, ok := ParsePath("/v1/api/employees", "v1/api/")
	assert.True(t, ok)
	assert.Equal(t, []string{"employees"}, segments)

	segments, ok = ParsePath("/employees/3", "/")
	assert.True(t, ok)
	assert.Equal(t, []string{"employees", "3"}, segments)
}
