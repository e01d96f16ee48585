package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

type eventResponse struct {
	Stage      model.Stage `json:"stage"`
	Outcome    string      `json:"outcome"`
	Detail     string      `json:"detail,omitempty"`
	OccurredAt string      `json:"occurred_at"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.cfg.MaxUploadBytes {
		h.writeError(w, &http.MaxBytesError{Limit: h.cfg.MaxUploadBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	req, err := h.parseIssueRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rec, err := h.issuer.Issue(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("certificate issued", zap.String("record_id", rec.ID), zap.String("content_hash", rec.ContentHash))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) parseIssueRequest(r *http.Request) (model.IssueRequest, error) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return model.IssueRequest{}, &http.MaxBytesError{Limit: h.cfg.MaxUploadBytes}
		}
		return model.IssueRequest{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return model.IssueRequest{}, fmt.Errorf("%w: file part: %v", model.ErrInvalidInput, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return model.IssueRequest{}, fmt.Errorf("read upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	var course model.CourseMetadata
	if raw := r.FormValue("course_metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &course); err != nil {
			return model.IssueRequest{}, fmt.Errorf("%w: course_metadata: %v", model.ErrInvalidInput, err)
		}
	}

	return model.IssueRequest{
		Artifact:         data,
		ContentType:      contentType,
		SubjectReference: r.FormValue("subject_reference"),
		CourseMetadata:   course,
		IssuerIdentity:   r.Header.Get(h.cfg.IssuerHeader),
	}, nil
}

func (h *Handler) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
	rec, err := h.records.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "audit journal is not configured"})
		return
	}
	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, fmt.Errorf("%w: limit must be a positive integer", model.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	rec, err := h.records.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	events, err := h.events.EventsByContentHash(r.Context(), rec.ContentHash, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, eventResponse{
			Stage:      event.Stage,
			Outcome:    event.Outcome,
			Detail:     event.Detail,
			OccurredAt: event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	result, err := h.verifier.Verify(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
