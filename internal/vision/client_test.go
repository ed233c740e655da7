package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photo(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1200, 900))))
	return buf.Bytes()
}

type fakeAPI struct {
	models      []string
	modelsCode  int
	replies     map[string]func(w http.ResponseWriter)
	modelCalls  atomic.Int32
	chatModels  []string
	lastRequest chatRequest
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		f.modelCalls.Add(1)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		if f.modelsCode != 0 {
			w.WriteHeader(f.modelsCode)
			return
		}
		var list modelList
		for _, id := range f.models {
			list.Data = append(list.Data, struct {
				ID string `json:"id"`
			}{ID: id})
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.lastRequest = req
		f.chatModels = append(f.chatModels, req.Model)

		if reply, ok := f.replies[req.Model]; ok {
			reply(w)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found"}}`))
	})
	return mux
}

func answer(text string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + mustJSON(text) + `}}]}`))
	}
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "key", BaseURL: srv.URL + "/v1/", HTTPClient: srv.Client()})
}

func TestModels_DiscoveryFiltersAndRunsOnce(t *testing.T) {
	api := &fakeAPI{models: []string{"llama-3.1-8b", "meta-llama/llama-4-scout-17b", "whisper", "LLaVA-v1.5", "pixtral-12b"}}
	c := newTestClient(t, api)

	got := c.Models(context.Background())
	assert.Equal(t, []string{"meta-llama/llama-4-scout-17b", "LLaVA-v1.5", "pixtral-12b"}, got)

	c.Models(context.Background())
	assert.Equal(t, int32(1), api.modelCalls.Load())
}

func TestModels_DiscoveryIgnoresCallerCancellation(t *testing.T) {
	api := &fakeAPI{models: []string{"pixtral-12b"}}
	c := newTestClient(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, []string{"pixtral-12b"}, c.Models(ctx))
	assert.Equal(t, []string{"pixtral-12b"}, c.Models(context.Background()))
	assert.Equal(t, int32(1), api.modelCalls.Load())
}

func TestModels_FallbackWhenNothingMatches(t *testing.T) {
	c := newTestClient(t, &fakeAPI{models: []string{"llama-3.1-8b"}})
	assert.Equal(t, FallbackModels, c.Models(context.Background()))
}

func TestModels_FallbackWhenDiscoveryFails(t *testing.T) {
	c := newTestClient(t, &fakeAPI{modelsCode: http.StatusInternalServerError})
	assert.Equal(t, FallbackModels, c.Models(context.Background()))
}

func TestIdentify_FirstAnsweringModelWins(t *testing.T) {
	api := &fakeAPI{
		models: []string{"a-vision", "b-vision", "c-vision"},
		replies: map[string]func(http.ResponseWriter){
			"b-vision": answer("  Motorola Moto G32 \n"),
			"c-vision": answer("never asked"),
		},
	}
	c := newTestClient(t, api)

	got, err := c.Identify(context.Background(), photo(t), []string{"Moto G32", "A52"})
	require.NoError(t, err)
	assert.Equal(t, "Motorola Moto G32", got)
	assert.Equal(t, []string{"a-vision", "b-vision"}, api.chatModels)

	req := api.lastRequest
	assert.Equal(t, 50, req.MaxTokens)
	assert.InDelta(t, 0.1, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	require.Len(t, req.Messages[0].Content, 2)
	assert.Contains(t, req.Messages[0].Content[0].Text, "Moto G32, A52")
	assert.True(t, strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,"))
}

func TestIdentify_ErrorObjectInOKResponse(t *testing.T) {
	api := &fakeAPI{
		models: []string{"a-vision"},
		replies: map[string]func(http.ResponseWriter){
			"a-vision": func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{"error":{"message":"image too large"}}`))
			},
		},
	}
	c := newTestClient(t, api)

	_, err := c.Identify(context.Background(), photo(t), nil)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "image too large")
}

func TestIdentify_ExhaustedKeepsLastError(t *testing.T) {
	api := &fakeAPI{models: []string{"a-vision", "b-vision"}}
	c := newTestClient(t, api)

	_, err := c.Identify(context.Background(), photo(t), nil)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.NotErrorIs(t, err, ErrQuota)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "model not found", apiErr.Message)
	assert.Equal(t, []string{"a-vision", "b-vision"}, api.chatModels)
}

func TestIdentify_Quota(t *testing.T) {
	api := &fakeAPI{
		models: []string{"a-vision"},
		replies: map[string]func(http.ResponseWriter){
			"a-vision": func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
			},
		},
	}
	c := newTestClient(t, api)

	_, err := c.Identify(context.Background(), photo(t), nil)
	assert.ErrorIs(t, err, ErrQuota)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestIdentify_Unknown(t *testing.T) {
	api := &fakeAPI{
		models:  []string{"a-vision"},
		replies: map[string]func(http.ResponseWriter){"a-vision": answer("Unknown.")},
	}
	c := newTestClient(t, api)

	_, err := c.Identify(context.Background(), photo(t), nil)
	assert.ErrorIs(t, err, ErrUnidentified)
}

func TestIdentify_EmptyRepliesExhaust(t *testing.T) {
	api := &fakeAPI{
		models:  []string{"a-vision"},
		replies: map[string]func(http.ResponseWriter){"a-vision": answer("   ")},
	}
	c := newTestClient(t, api)

	_, err := c.Identify(context.Background(), photo(t), nil)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestIdentify_NoAPIKey(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Enabled())

	_, err := c.Identify(context.Background(), photo(t), nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestIdentify_BadImage(t *testing.T) {
	c := New(Config{APIKey: "key", BaseURL: "http://127.0.0.1:1"})
	_, err := c.Identify(context.Background(), []byte("nope"), nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestIsQuota(t *testing.T) {
	assert.True(t, IsQuota(&APIError{StatusCode: 429, Message: "slow down"}))
	assert.True(t, IsQuota(&APIError{Message: "You exceeded your current QUOTA"}))
	assert.False(t, IsQuota(&APIError{StatusCode: 500, Message: "boom"}))
}

func TestIsUnknown(t *testing.T) {
	assert.True(t, IsUnknown("unknown"))
	assert.True(t, IsUnknown(" Desconocido "))
	assert.False(t, IsUnknown("Unknown brand X1"))
}
