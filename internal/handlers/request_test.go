package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeForm(t *testing.T) {
	var req UpdateUserRequest
	err := decodeForm(url.Values{
		"id":      {" 7 "},
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"unknown": {"x"},
	}, &req)
	require.NoError(t, err)
	assert.Equal(t, UpdateUserRequest{ID: 7, Name: "Ann", Email: "ann@example.com"}, req)

	assert.Error(t, decodeForm(url.Values{"id": {"seven"}}, &req))
	assert.Error(t, decodeForm(url.Values{}, req))
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  models.Page
	}{
		{"", models.Page{Number: 1, Size: 10}},
		{"page=2&size=20", models.Page{Number: 2, Size: 20}},
		{"page=0&size=0", models.Page{Number: 1, Size: 10}},
		{"page=-1&size=500", models.Page{Number: 1, Size: models.MaxPageSize}},
		{"page=x&size=y", models.Page{Number: 1, Size: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, parsePage(r))
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := parseID(raw)
		assert.Error(t, err, raw)
	}
}
