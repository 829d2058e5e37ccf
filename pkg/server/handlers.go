package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/herobook/pkg/book"
	"github.com/matzehuels/herobook/pkg/buildinfo"
	"github.com/matzehuels/herobook/pkg/errors"
	"github.com/matzehuels/herobook/pkg/pipeline"
	"github.com/matzehuels/herobook/pkg/status"
	"github.com/matzehuels/herobook/pkg/storage"
)

// RenderResponse is the body of a successful POST /render.
type RenderResponse struct {
	OrderID     string            `json:"orderId"`
	BookPDFURL  string            `json:"bookPdfUrl"`
	CoverPDFURL string            `json:"coverPdfUrl"`
	ThumbURL    string            `json:"thumbUrl,omitempty"`
	Status      status.State      `json:"status"`
	Metadata    pipeline.Metadata `json:"metadata"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	Timestamp string `json:"timestamp"`

	// FallbackPaths lists local copies when storage failed after a render.
	FallbackPaths []string `json:"fallbackPaths,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"service":   ServiceName,
		"version":   buildinfo.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := book.Decode(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		if mbe := (*http.MaxBytesError)(nil); stderrors.As(err, &mbe) {
			err = errors.Wrap(errors.ErrCodeTooLarge, err, "request body exceeds %d bytes", mbe.Limit)
		}
		writeErr(w, "", err)
		return
	}
	orderID := req.OrderID
	opts := s.defaults
	opts.Request = req
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeErr(w, orderID, err)
		return
	}

	if !s.locks.TryAcquire(orderID) {
		writeErr(w, orderID, errors.New(errors.ErrCodeConflict, "order %s is already rendering", orderID))
		return
	}
	defer s.locks.Release(orderID)

	rec := status.Processing(orderID)
	s.saveStatus(r, rec)

	fail := func(err error) {
		rec.Fail(err)
		s.saveStatus(r, rec)
		writeErr(w, orderID, err)
	}

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		fail(err)
		return
	}
	if s.uploader == nil {
		fail(errors.New(errors.ErrCodeStorage, "no storage configured"))
		return
	}
	urls, err := storage.UploadWithFallback(ctx, s.uploader, s.fallback, orderID, storage.Artifacts{
		Book:  res.Book,
		Cover: res.Cover,
		Thumb: res.Thumbnail,
	})
	if err != nil {
		fail(err)
		return
	}

	rec.Complete(res.Stats.Pages, status.URLs{Book: urls.Book, Cover: urls.Cover, Thumb: urls.Thumb})
	s.saveStatus(r, rec)
	s.logger.Info("order completed", "order", orderID, "pages", res.Stats.Pages, "skipped", res.Stats.Skipped)

	writeJSON(w, http.StatusOK, RenderResponse{
		OrderID:     orderID,
		BookPDFURL:  urls.Book,
		CoverPDFURL: urls.Cover,
		ThumbURL:    urls.Thumb,
		Status:      status.StateCompleted,
		Metadata:    res.Metadata,
	})
}

// saveStatus records rec. A status write failure is logged, never fatal to
// the render.
func (s *Server) saveStatus(r *http.Request, rec *status.Record) {
	if err := s.status.Set(context.WithoutCancel(r.Context()), rec); err != nil {
		s.logger.Warn("status write failed", "order", rec.OrderID, "state", rec.State, "err", err)
	}
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeErr(w, "", errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	recs, err := s.status.List(r.Context(), limit)
	if err != nil {
		writeErr(w, "", errors.Wrap(errors.ErrCodeInternal, err, "list orders"))
		return
	}
	if recs == nil {
		recs = []*status.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": recs})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := errors.ValidateOrderID(orderID); err != nil {
		writeErr(w, orderID, err)
		return
	}
	rec, err := s.status.Get(r.Context(), orderID)
	if stderrors.Is(err, status.ErrNotFound) {
		writeErr(w, orderID, errors.New(errors.ErrCodeNotFound, "order %s not found", orderID))
		return
	}
	if err != nil {
		writeErr(w, orderID, errors.Wrap(errors.ErrCodeInternal, err, "read order status"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if s.output == nil {
		writeErr(w, orderID, errors.New(errors.ErrCodeNotFound, "no local output"))
		return
	}
	path, err := s.output.Path(orderID, chi.URLParam(r, "file"))
	if err != nil {
		writeErr(w, orderID, err)
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeErr(w, orderID, errors.New(errors.ErrCodeNotFound, "%s not found", r.URL.Path))
		return
	}
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, orderID string, err error) {
	code := errors.HTTPStatus(err)
	body := ErrorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		OrderID:   orderID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if fe := (*storage.FallbackError)(nil); stderrors.As(err, &fe) {
		body.FallbackPaths = fe.Paths
	}
	writeJSON(w, code, body)
}

func writeError(w http.ResponseWriter, code int, orderID, msg string) {
	writeJSON(w, code, ErrorResponse{
		Error:     msg,
		OrderID:   orderID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
