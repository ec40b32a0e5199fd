package server

import (
	goerrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"flockscope/internal/artifact"
	"flockscope/internal/dao"
	"flockscope/internal/service"
	"flockscope/internal/version"
)

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dao.HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, dao.HealthResponse{
		Status:  "ok",
		Service: version.APP,
		Version: version.VERSION,
	})
}

// handleAnalyzeVideo runs one analysis session over the uploaded video
// @Summary Analyze a video
// @Description Upload a CCTV video to receive bird counts and weight proxies
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "video file"
// @Param fps_sample formData int false "requested analysis rate" default(30)
// @Param conf_thresh formData number false "detection confidence threshold" default(0.3)
// @Success 200 {object} dao.AnalyzeVideoResponse
// @Failure 400 {object} ErrorResponse "invalid parameters"
// @Failure 422 {object} ErrorResponse "video cannot be decoded"
// @Failure 502 {object} ErrorResponse "detector unavailable"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/analyze_video [post]
func (s *Server) handleAnalyzeVideo(c *gin.Context) {
	var req dao.AnalyzeVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	sr := &service.Request{
		Filename:      fh.Filename,
		Body:          f,
		FPSSample:     s.conf.Analysis.FPSSample,
		ConfThreshold: s.conf.Analysis.ConfThreshold,
	}
	if req.FPSSample != nil {
		sr.FPSSample = *req.FPSSample
	}
	if req.ConfThresh != nil {
		sr.ConfThreshold = *req.ConfThresh
	}
	record, err := s.svc.Analyze(c.Request.Context(), sr)
	if err != nil {
		s.writeError(c, statusOf(err), err)
		return
	}

	c.JSON(http.StatusOK, dao.ToAnalyzeVideoResponse(record))
}

// @Summary Download an annotated video
// @Tags analysis
// @Produce octet-stream
// @Param filename path string true "artifact name"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse "invalid file name"
// @Failure 404 {object} ErrorResponse "file not found"
// @Router /api/v1/download/{filename} [get]
func (s *Server) handleDownload(c *gin.Context) {
	name := c.Param("filename")
	p, err := s.svc.Artifacts().Resolve(name)
	if err != nil {
		if goerrors.Is(err, artifact.ErrInvalidName) {
			s.writeError(c, http.StatusBadRequest, err)
			return
		}
		s.writeError(c, http.StatusNotFound, fmt.Errorf("File not found"))
		return
	}

	c.Header("Content-Type", artifact.ContentType(p))
	c.FileAttachment(p, name)
}

// @Summary List analyses
// @Tags analysis
// @Produce json
// @Param start query int false "offset" default(0)
// @Param limit query int false "page size" default(10)
// @Param brief query bool false "omit per-frame data"
// @Success 200 {object} dao.ListAnalysisResponse
// @Failure 400 {object} ErrorResponse "invalid parameters"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/analysis [get]
func (s *Server) handleListAnalysis(c *gin.Context) {
	req := &dao.ListAnalysisRequest{}
	if err := c.ShouldBindQuery(req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	records, total, err := s.svc.Records().List(req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	items := make([]dao.AnalysisSpec, len(records))
	for i, r := range records {
		items[i] = dao.FromRecord(r, req.Brief)
	}
	c.JSON(http.StatusOK, dao.ListAnalysisResponse{
		Items: items,
		Total: total,
	})
}

// @Summary Get an analysis
// @Tags analysis
// @Produce json
// @Param analysis_id path string true "analysis id"
// @Success 200 {object} dao.AnalysisSpec
// @Failure 404 {object} ErrorResponse "analysis not found"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/analysis/{analysis_id} [get]
func (s *Server) handleGetAnalysis(c *gin.Context) {
	record, err := s.svc.Records().Get(c.Param("analysis_id"))
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if record == nil {
		s.writeError(c, http.StatusNotFound, fmt.Errorf("analysis not found"))
		return
	}
	c.JSON(http.StatusOK, dao.FromRecord(record, false))
}

// @Summary Delete an analysis and its video
// @Tags analysis
// @Param analysis_id path string true "analysis id"
// @Success 200
// @Failure 404 {object} ErrorResponse "analysis not found"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/analysis/{analysis_id} [delete]
func (s *Server) handleDeleteAnalysis(c *gin.Context) {
	ok, err := s.svc.Delete(c.Param("analysis_id"))
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	} else if !ok {
		s.writeError(c, http.StatusNotFound, fmt.Errorf("analysis not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
