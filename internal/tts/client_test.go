package tts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SpeechURL(t *testing.T) {
	c := New("", "ja")

	raw := c.SpeechURL("こんにちは www")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "translate.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "こんにちは www", q.Get("q"))
	assert.Equal(t, "ja", q.Get("tl"))
	assert.Equal(t, "UTF-8", q.Get("ie"))
	assert.Equal(t, "tw-ob", q.Get("client"))
}

func TestClient_OpenReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "やあ", r.URL.Query().Get("q"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL, "en")
	body, err := c.Open(context.Background(), "やあ")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))
}

func TestClient_OpenNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, "ja")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := c.Open(ctx, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
