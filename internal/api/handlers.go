package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zenload/zenload/internal/jobs"
	"github.com/zenload/zenload/internal/model"
)

type fetchRequest struct {
	URL string `json:"url"`
}

type submitRequest struct {
	URL           string           `json:"url"`
	FormatID      string           `json:"format_id"`
	Title         string           `json:"title"`
	Kind          model.OptionKind `json:"kind"`
	Container     string           `json:"container"`
	HasAudioTrack bool             `json:"has_audio_track"`
}

type submitResponse struct {
	JobKey string `json:"job_key"`
}

type healthResponse struct {
	Status      string `json:"status"`
	EngineReady bool   `json:"engine_ready"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// jobView is the wire shape of a download job. The model type stays free
// of serialization tags so it can change without breaking API clients.
type jobView struct {
	JobKey          string `json:"job_key"`
	SourceURL       string `json:"source_url"`
	FormatID        string `json:"format_id"`
	Title           string `json:"title"`
	State           string `json:"state"`
	ProgressPercent int    `json:"progress_percent"`
	ETA             string `json:"eta"`
	LastError       string `json:"last_error,omitempty"`
	OutputPath      string `json:"output_path,omitempty"`
	Attempt         int    `json:"attempt"`
}

func viewOf(job *model.DownloadJob) jobView {
	return jobView{
		JobKey:          job.JobKey,
		SourceURL:       job.SourceURL,
		FormatID:        job.FormatID,
		Title:           job.GetDisplayTitle(),
		State:           string(job.State),
		ProgressPercent: job.ProgressPercent,
		ETA:             job.GetETAString(),
		LastError:       job.LastError,
		OutputPath:      job.OutputPath,
		Attempt:         job.Attempt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		EngineReady: s.gate.Ready(),
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	summary, err := s.service.Fetch(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	choice := model.MediaOption{
		FormatID:      req.FormatID,
		Kind:          req.Kind,
		Container:     req.Container,
		HasAudioTrack: req.HasAudioTrack,
	}

	key, err := s.service.Submit(req.URL, choice, req.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{JobKey: key})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	all := s.service.Jobs()

	views := make([]jobView, 0, len(all))
	for _, job := range all {
		views = append(views, viewOf(job))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	job, ok := s.service.Job(key)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	writeJSON(w, http.StatusOK, viewOf(job))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := s.service.Cancel(key); err != nil {
		switch {
		case errors.Is(err, jobs.ErrJobNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, jobs.ErrJobFinished):
			writeError(w, http.StatusConflict, "job already finished")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
