package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/autonotes/internal/common"
	"github.com/dmitrijs2005/autonotes/internal/server/models"
	"github.com/dmitrijs2005/autonotes/internal/server/services"
	"github.com/dmitrijs2005/autonotes/internal/server/storage"
)

// NotesService is the application-level API the handlers delegate to.
// Implemented by services.NoteService.
type NotesService interface {
	Submit(ctx context.Context, ownerID, title string, files []services.File) (string, error)
	Get(ctx context.Context, ownerID, id string) (*models.Note, error)
	List(ctx context.Context, ownerID string) ([]*models.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ownerHeader carries the authenticated user id, set by the edge proxy.
const ownerHeader = "X-User-ID"

// maxRequestBytes caps the whole multipart request; individual files are
// additionally limited by storage.MaxObjectSizeBytes.
const maxRequestBytes = 4 * storage.MaxObjectSizeBytes

type imageResponse struct {
	OriginalFileName string `json:"originalFileName"`
	ContentType      string `json:"contentType"`
	OrderIndex       int    `json:"orderIndex"`
	SizeBytes        int64  `json:"sizeBytes"`
}

type noteResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Status      string          `json:"status"`
	SummaryText string          `json:"summaryText,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Images      []imageResponse `json:"images,omitempty"`
}

func toNoteResponse(note *models.Note) noteResponse {
	resp := noteResponse{
		ID:          note.ID,
		Title:       note.Title,
		Status:      string(note.Status),
		SummaryText: note.SummaryText,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
	for _, img := range note.Images {
		resp.Images = append(resp.Images, imageResponse{
			OriginalFileName: img.OriginalFileName,
			ContentType:      img.ContentType,
			OrderIndex:       img.OrderIndex,
			SizeBytes:        img.SizeBytes,
		})
	}
	return resp
}

func (s *HTTPServer) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := r.Header.Get(ownerHeader)
	if ownerID == "" {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return "", false
	}
	return ownerID, true
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "response encoding error", "error", err.Error())
	}
}

// writeError maps service errors onto HTTP status codes.
func (s *HTTPServer) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrPayloadRejected):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, common.ErrSubmissionFailed):
		http.Error(w, "submission failed, please retry", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// submitHandler accepts a multipart form with a "title" field and one or more
// "files" parts in page order, and responds with the id of the created note.
func (s *HTTPServer) submitHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	title := r.FormValue("title")

	var files []services.File
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			http.Error(w, "unreadable file part", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "unreadable file part", http.StatusBadRequest)
			return
		}
		files = append(files, services.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	id, err := s.service.Submit(r.Context(), ownerID, title, files)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"noteId": id})
}

func (s *HTTPServer) listHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}

	list, err := s.service.List(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]noteResponse, 0, len(list))
	for _, note := range list {
		resp = append(resp, toNoteResponse(note))
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) getHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}

	note, err := s.service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *HTTPServer) deleteHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}

	if err := s.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
