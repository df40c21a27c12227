package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsHeadersAndQuery(t *testing.T) {
	var gotUA, gotAccept, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.RawQuery
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := NewClient("scout-test/1.0")
	resp, err := c.Get(context.Background(), srv.URL+"/jobseekers/jobsearch", url.Values{"q": {"entry level"}, "page": {"1"}}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<html>ok</html>", string(resp.Body))
	assert.Equal(t, "scout-test/1.0", gotUA)
	assert.Contains(t, gotAccept, "text/html")
	assert.Equal(t, "page=1&q=entry+level", gotQuery)
	assert.Equal(t, srv.URL+"/jobseekers/jobsearch?page=1&q=entry+level", resp.FinalURL)
}

func TestClient_DefaultUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	_, err := NewClient("").Get(context.Background(), srv.URL, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient("").Get(context.Background(), srv.URL, nil, time.Second)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusForbidden, te.Status)
	assert.False(t, te.Timeout)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient("").Get(context.Background(), srv.URL, nil, 50*time.Millisecond)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Timeout)
	assert.Zero(t, te.Status)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient("").Get(context.Background(), addr, nil, time.Second)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.Status)
}

func TestClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("").Get(context.Background(), "ftp://example.com/x", nil, time.Second)

	var te *TransportError
	assert.True(t, errors.As(err, &te))
}
