package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flockscope/internal/analysis"
	"flockscope/internal/artifact"
	"flockscope/internal/config"
	"flockscope/internal/dao"
	"flockscope/internal/notify"
	"flockscope/internal/service"
	"flockscope/internal/store"
)

type blankCanvas struct{}

func (blankCanvas) Size() (int, int) { return 64, 48 }
func (blankCanvas) Close() error     { return nil }

type lineSource struct {
	frames, read int
}

func (s *lineSource) Metadata() analysis.Metadata {
	return analysis.Metadata{FPS: 10, Width: 64, Height: 48, TotalFrames: s.frames}
}

func (s *lineSource) Next() (analysis.Canvas, error) {
	if s.read >= s.frames {
		return nil, io.EOF
	}
	s.read++
	return blankCanvas{}, nil
}

func (s *lineSource) Close() error { return nil }

type fileSink struct {
	f *os.File
}

func (s *fileSink) Write(*analysis.Frame) error {
	_, err := s.f.WriteString("frame\n")
	return err
}

func (s *fileSink) Close() error { return s.f.Close() }

type nopAnnotator struct{}

func (nopAnnotator) Annotate(*analysis.Frame, []analysis.Detection, int) error { return nil }

// lineBackend decodes one frame per line of the upload. Uploads starting
// with "bad" cannot be opened.
type lineBackend struct{}

func (lineBackend) OpenSource(path string) (analysis.FrameSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(string(data), "bad") {
		return nil, errors.New("unsupported container")
	}
	return &lineSource{frames: strings.Count(string(data), "\n")}, nil
}

func (lineBackend) OpenSink(path string, meta analysis.Metadata) (analysis.VideoSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}

func (lineBackend) Annotator() analysis.Annotator { return nopAnnotator{} }

type oneBird struct{}

func (oneBird) Track(context.Context, *analysis.Frame, float32, int) ([]analysis.RawDetection, error) {
	return []analysis.RawDetection{{TrackID: 3, Box: analysis.Box{X1: 0, Y1: 0, X2: 40, Y2: 50}, Confidence: 0.7}}, nil
}

type oneBirdFactory struct{}

func (oneBirdFactory) NewSession() analysis.Tracker { return oneBird{} }

func newTestServer(t *testing.T, jwtSecret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf := config.DefaultConfig()
	conf.WorkDir = t.TempDir()
	conf.JwtSecret = jwtSecret

	artifacts, err := artifact.NewStore(conf.ArtifactDir(), conf.S3)
	require.NoError(t, err)
	records, err := store.NewMemoryStore()
	require.NoError(t, err)
	publisher, err := notify.NewPublisher(conf.NSQ)
	require.NoError(t, err)
	svc := service.New(conf, analysis.NewAnalyzer(lineBackend{}, oneBirdFactory{}), records, artifacts, publisher)
	t.Cleanup(svc.Close)

	s, err := NewServer(context.Background(), conf, svc)
	require.NoError(t, err)
	return s.SetUpRouter()
}

func uploadRequest(t *testing.T, body string, fields map[string]string) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if body != "" {
		fw, err := w.CreateFormFile("file", "coop.mp4")
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze_video", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func analyze(t *testing.T, router *gin.Engine, body string) dao.AnalyzeVideoResponse {
	t.Helper()
	rec := serve(router, uploadRequest(t, body, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dao.AnalyzeVideoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	router := newTestServer(t, "")
	for _, path := range []string{"/health", "/healthz"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp dao.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "flockscope", resp.Service)
	}
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAnalyzeVideoAndDownload(t *testing.T) {
	router := newTestServer(t, "")

	rec := serve(router, uploadRequest(t, "f\nf\n", map[string]string{"fps_sample": "15", "conf_thresh": "0.5"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dao.AnalyzeVideoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AnalysisId)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "/api/v1/download/processed_"+resp.AnalysisId+"_coop.mp4", resp.VideoDownloadUrl)
	require.NotNil(t, resp.Data)
	assert.Equal(t, 2, resp.Data.TotalFramesProcessed)
	assert.Equal(t, 1, resp.Data.UniqueBirdsTracked)
	assert.Equal(t, []analysis.FrameStat{
		{TimeSec: 0, Count: 1, AvgWeightProxy: 2000},
		{TimeSec: 0.1, Count: 1, AvgWeightProxy: 2000},
	}, resp.Data.CountsTimeseries)
	assert.Equal(t, analysis.TrackRecord{FirstSeenFrame: 0, Confidence: 0.7, SampleBox: [4]int{0, 0, 40, 50}},
		resp.Data.TracksSample[3])

	rec = serve(router, httptest.NewRequest(http.MethodGet, resp.VideoDownloadUrl, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "frame\nframe\n", rec.Body.String())

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+resp.AnalysisId, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var spec dao.AnalysisSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, 15, spec.FPSSample)
	assert.Equal(t, float32(0.5), spec.ConfThreshold)
	assert.Equal(t, "coop.mp4", spec.Input)
}

func TestAnalyzeVideoBadRequests(t *testing.T) {
	router := newTestServer(t, "")

	rec := serve(router, uploadRequest(t, "", map[string]string{"fps_sample": "30"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, uploadRequest(t, "f\n", map[string]string{"conf_thresh": "1.5"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, uploadRequest(t, "f\n", map[string]string{"fps_sample": "-2"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, uploadRequest(t, "f\n", map[string]string{"fps_sample": "0"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, uploadRequest(t, "f\n", map[string]string{"conf_thresh": "0"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, uploadRequest(t, "bad\n", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported container")
}

func TestAnalyzeVideoDefaults(t *testing.T) {
	router := newTestServer(t, "")
	resp := analyze(t, router, "f\n")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+resp.AnalysisId, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var spec dao.AnalysisSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Equal(t, 30, spec.FPSSample)
	assert.Equal(t, float32(0.3), spec.ConfThreshold)
}

func TestUnversionedRoutes(t *testing.T) {
	router := newTestServer(t, "")

	req := uploadRequest(t, "f\nf\n", nil)
	req.URL.Path = "/analyze_video"
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dao.AnalyzeVideoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalFramesProcessed)

	name := "processed_" + resp.AnalysisId + "_coop.mp4"
	rec = serve(router, httptest.NewRequest(http.MethodGet, "/download/"+name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "frame\nframe\n", rec.Body.String())

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/download/nope.mp4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnversionedRoutesRequireToken(t *testing.T) {
	router := newTestServer(t, "s3cret")
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/download/nope.mp4", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoggerRecordsSubject(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)
	router := newTestServer(t, "s3cret")

	token, err := GenToken("s3cret", "ops", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, serve(router, req).Code)

	var subjects []interface{}
	for _, entry := range hook.AllEntries() {
		if v, ok := entry.Data["subject"]; ok {
			subjects = append(subjects, v)
		}
	}
	assert.Equal(t, []interface{}{"ops"}, subjects)

	hook.Reset()
	serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, hook.AllEntries())
	for _, entry := range hook.AllEntries() {
		assert.NotContains(t, entry.Data, "subject")
	}
}

func TestDownloadMissing(t *testing.T) {
	router := newTestServer(t, "")
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/download/nope.mp4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"File not found"}`, rec.Body.String())
}

func TestListAndDeleteAnalysis(t *testing.T) {
	router := newTestServer(t, "")
	first := analyze(t, router, "f\n")
	second := analyze(t, router, "f\nf\n")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis?brief=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list dao.ListAnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 2)
	for _, item := range list.Items {
		assert.Nil(t, item.Data)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis?limit=100", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/analysis/"+first.AnalysisId, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+first.AnalysisId, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(router, httptest.NewRequest(http.MethodGet, first.VideoDownloadUrl, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/api/v1/analysis/"+first.AnalysisId, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, second.AnalysisId, list.Items[0].AnalysisId)
}

func TestTokenAuth(t *testing.T) {
	router := newTestServer(t, "s3cret")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := GenToken("s3cret", "ops", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, serve(router, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis?token="+token, nil)
	assert.Equal(t, http.StatusOK, serve(router, req).Code)

	forged, err := GenToken("other", "ops", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)

	expired, err := GenToken("s3cret", "ops", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis?token="+expired, nil)
	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: bad", analysis.ErrInvalidParams), http.StatusBadRequest},
		{&analysis.SourceOpenError{Path: "a", Err: io.ErrUnexpectedEOF}, http.StatusUnprocessableEntity},
		{&analysis.SourceReadError{Frame: 3, Err: io.ErrUnexpectedEOF}, http.StatusUnprocessableEntity},
		{&analysis.DetectionError{Frame: 1, Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{&analysis.SinkOpenError{Path: "b", Err: os.ErrPermission}, http.StatusInternalServerError},
		{&analysis.SinkWriteError{Frame: 2, Err: os.ErrClosed}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, statusOf(tt.err), tt.err.Error())
	}
}
