package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
  {
    "id": "e43638ce-6aa0-4b85-b27f-e1d07eb678c6",
    "image": "images/products/athletic-cotton-socks-6-pairs.jpg",
    "name": "Black and Gray Athletic Cotton Socks - 6 Pairs",
    "rating": {"stars": 4.5, "count": 87},
    "priceCents": 1090,
    "keywords": ["socks", "sports", "apparel"]
  }
]`

func TestHTTPLoader_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	products, err := NewHTTPLoader(srv.URL+"/products", nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(1090), products[0].PriceCents)
	assert.Equal(t, 4.5, products[0].Rating.Stars)
	assert.Equal(t, 87, products[0].Rating.Count)
}

func TestHTTPLoader_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPLoader(srv.URL, srv.Client()).Load(context.Background())
	require.ErrorContains(t, err, "unexpected status 503")
}

func TestHTTPLoader_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	_, err := NewHTTPLoader(srv.URL, srv.Client()).Load(context.Background())
	require.ErrorContains(t, err, "failed to decode catalog")
}

func TestHTTPLoader_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPLoader(url, nil).Load(context.Background())
	require.ErrorContains(t, err, "failed to fetch catalog")
}
