package video

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterpiece/internal/domain"
	"masterpiece/internal/providers/genai"
)

func testRequest(t *testing.T) domain.GenerationRequest {
	t.Helper()
	req, err := domain.NewGenerationRequest("wake up", domain.Image{Data: []byte{1, 2, 3}, MIMEType: "image/png"}, domain.AspectPortrait)
	require.NoError(t, err)
	return req
}

func TestIsStaleCredential(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"structured not found", &genai.APIError{HTTPStatus: 404, Status: "NOT_FOUND", Message: "gone"}, true},
		{"operation not found", &genai.APIError{Code: 404, Message: "gone"}, true},
		{"structured other", &genai.APIError{HTTPStatus: 400, Status: "INVALID_ARGUMENT", Message: "bad"}, false},
		{"wrapped message", errors.New("upstream: Requested entity was not found."), true},
		{"plain failure", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsStaleCredential(tc.err))
		})
	}
}

func TestVeoLifecycle(t *testing.T) {
	polls := 0
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":predictLongRunning"):
			_, _ = io.WriteString(w, `{"name":"models/veo/operations/op-9"}`)
		case strings.HasSuffix(r.URL.Path, "/operations/op-9"):
			polls++
			if polls < 2 {
				_, _ = io.WriteString(w, `{"name":"models/veo/operations/op-9"}`)
				return
			}
			_, _ = io.WriteString(w, `{"name":"models/veo/operations/op-9","done":true,"response":{"generateVideoResponse":{"generatedSamples":[{"video":{"uri":"`+srvURL+`/files/v?alt=media"}}]}}}`)
		case r.URL.Path == "/files/v":
			assert.Equal(t, "k", r.URL.Query().Get("key"))
			_, _ = w.Write([]byte("mp4"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	veo := NewVeo(genai.NewClient(genai.Options{BaseURL: srv.URL, HTTPClient: srv.Client()}), nil)
	ctx := context.Background()

	job, err := veo.Submit(ctx, "k", testRequest(t))
	require.NoError(t, err)
	assert.False(t, job.Done)

	job, err = veo.Poll(ctx, "k", job)
	require.NoError(t, err)
	assert.False(t, job.Done)

	job, err = veo.Poll(ctx, "k", job)
	require.NoError(t, err)
	require.True(t, job.Done)

	data, err := veo.Download(ctx, "k", job.ResultURI)
	require.NoError(t, err)
	assert.Equal(t, "mp4", string(data))
}

func TestVeoPollOperationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"op","done":true,"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`)
	}))
	defer srv.Close()

	veo := NewVeo(genai.NewClient(genai.Options{BaseURL: srv.URL, HTTPClient: srv.Client()}), nil)
	_, err := veo.Poll(context.Background(), "k", domain.Job{Name: "op"})
	require.Error(t, err)
	assert.True(t, IsStaleCredential(err))
}

func TestVeoDownloadFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	veo := NewVeo(genai.NewClient(genai.Options{BaseURL: srv.URL, HTTPClient: srv.Client()}), nil)
	_, err := veo.Download(context.Background(), "k", srv.URL+"/files/v")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, "Failed to download video: Forbidden", err.Error())
}

func TestVeoDownloadUnfollowedRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultipleChoices)
		_, _ = w.Write([]byte("not a video"))
	}))
	defer srv.Close()

	veo := NewVeo(genai.NewClient(genai.Options{BaseURL: srv.URL, HTTPClient: srv.Client()}), nil)
	data, err := veo.Download(context.Background(), "k", srv.URL+"/files/v")
	require.Error(t, err)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, "Failed to download video: Multiple Choices", err.Error())
}

func TestSyntheticCompletesAfterPolls(t *testing.T) {
	s := NewSynthetic(2, nil)
	ctx := context.Background()

	job, err := s.Submit(ctx, "", testRequest(t))
	require.NoError(t, err)
	require.False(t, job.Done)

	job, err = s.Poll(ctx, "", job)
	require.NoError(t, err)
	assert.False(t, job.Done)

	job, err = s.Poll(ctx, "", job)
	require.NoError(t, err)
	require.True(t, job.Done)
	require.NotEmpty(t, job.ResultURI)

	data, err := s.Download(ctx, "", job.ResultURI)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wake up")

	_, err = s.Download(ctx, "", job.ResultURI)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed, "results are released after download")
}

func TestSyntheticImmediate(t *testing.T) {
	s := NewSynthetic(0, nil)
	job, err := s.Submit(context.Background(), "", testRequest(t))
	require.NoError(t, err)
	assert.True(t, job.Done)
}

func TestSyntheticUnknownOperation(t *testing.T) {
	_, err := NewSynthetic(1, nil).Poll(context.Background(), "", domain.Job{Name: "nope"})
	assert.Error(t, err)
}
