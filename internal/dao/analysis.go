package dao

import (
	"time"

	"flockscope/internal/analysis"
	"flockscope/internal/store"
)

const DownloadPath = "/api/v1/download/"

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// AnalyzeVideoRequest leaves absent fields nil so the configured defaults
// apply; explicit values must be in range.
type AnalyzeVideoRequest struct {
	FPSSample  *int     `form:"fps_sample" binding:"omitempty,gt=0"`
	ConfThresh *float32 `form:"conf_thresh" binding:"omitempty,gt=0,lte=1"`
}

type AnalyzeVideoResponse struct {
	AnalysisId       string           `json:"analysis_id"`
	Status           string           `json:"status"`
	VideoDownloadUrl string           `json:"video_download_url"`
	Data             *analysis.Result `json:"data"`
}

type AnalysisSpec struct {
	AnalysisId       string           `json:"analysis_id"`
	Status           string           `json:"status"`
	Error            string           `json:"error,omitempty"`
	Input            string           `json:"input"`
	VideoDownloadUrl string           `json:"video_download_url,omitempty"`
	ObjectPath       string           `json:"object_path,omitempty"`
	FPSSample        int              `json:"fps_sample"`
	ConfThreshold    float32          `json:"conf_threshold"`
	CreateTime       time.Time        `json:"create_time"`
	Data             *analysis.Result `json:"data,omitempty"`
}

type ListAnalysisRequest struct {
	Start int `json:"start" form:"start" binding:"min=0"`
	Limit int `json:"limit" form:"limit" binding:"min=0,max=50"`
	// omit per-frame data in list items
	Brief bool `json:"brief" form:"brief"`
}

type ListAnalysisResponse struct {
	Items []AnalysisSpec `json:"items"`
	Total int            `json:"total"`
}

func ToAnalyzeVideoResponse(r *store.Record) *AnalyzeVideoResponse {
	return &AnalyzeVideoResponse{
		AnalysisId:       r.Id,
		Status:           string(r.Status),
		VideoDownloadUrl: DownloadPath + r.Output,
		Data:             (*analysis.Result)(r.Result),
	}
}

func FromRecord(r *store.Record, brief bool) AnalysisSpec {
	spec := AnalysisSpec{
		AnalysisId:       r.Id,
		Status:           string(r.Status),
		Error:            r.Error,
		Input:            r.Input,
		ObjectPath:       r.ObjectPath,
		FPSSample:        r.FPSSample,
		ConfThreshold:    r.ConfThreshold,
		CreateTime:       r.CreateTime,
	}
	if r.Output != "" {
		spec.VideoDownloadUrl = DownloadPath + r.Output
	}
	if !brief {
		spec.Data = (*analysis.Result)(r.Result)
	}
	return spec
}
