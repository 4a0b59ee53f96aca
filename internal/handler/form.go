package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Raymond9734/acme-dashboard-backend/internal/cache"
	"github.com/Raymond9734/acme-dashboard-backend/internal/service"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

// HeaderInvalidatedPaths lists the cache paths a mutation made stale
const HeaderInvalidatedPaths = "X-Invalidated-Paths"

const (
	maxFormSize       = 5 << 20
	invalidateTimeout = 2 * time.Second
)

// decodeForm reads a urlencoded or multipart submission
func decodeForm(w http.ResponseWriter, r *http.Request) (validation.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return validation.Form{}, fmt.Errorf("failed to parse form: %w", err)
		}
		return validation.NewForm(r.PostForm), nil
	}

	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		return validation.Form{}, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	form := validation.NewForm(r.MultipartForm.Value)
	for name, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		header := headers[0]

		f, err := header.Open()
		if err != nil {
			return validation.Form{}, fmt.Errorf("failed to open %s: %w", name, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return validation.Form{}, fmt.Errorf("failed to read %s: %w", name, err)
		}

		form = form.WithFile(name, &validation.File{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return form, nil
}

// parsePage reads a 1-based page number, falling back to 1
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// outcomeWriter performs the effects a mutation outcome describes
type outcomeWriter struct {
	cache  cache.Client
	logger *slog.Logger
}

func newOutcomeWriter(cacheClient cache.Client, logger *slog.Logger) *outcomeWriter {
	if cacheClient == nil {
		cacheClient = cache.NewNopClient()
	}
	return &outcomeWriter{cache: cacheClient, logger: logger}
}

// write renders a form state, or invalidates and redirects
func (o *outcomeWriter) write(w http.ResponseWriter, r *http.Request, outcome service.Outcome) {
	if outcome.Failed() {
		respondState(w, outcome.State)
		return
	}

	attrs := []any{slog.String("path", r.URL.Path)}
	if claims, ok := claimsFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("user_id", claims.Subject))
	}
	o.logger.Info("form submission applied", attrs...)

	if len(outcome.Invalidate) > 0 {
		o.invalidate(r.Context(), outcome.Invalidate)
		w.Header().Set(HeaderInvalidatedPaths, strings.Join(outcome.Invalidate, ","))
	}

	if outcome.RedirectTo != "" {
		http.Redirect(w, r, outcome.RedirectTo, http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// invalidate never fails the request; errors are only logged
func (o *outcomeWriter) invalidate(ctx context.Context, paths []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	if err := o.cache.Invalidate(ctx, paths...); err != nil {
		o.logger.Warn("cache invalidation failed",
			slog.String("paths", strings.Join(paths, ",")),
			slog.String("error", err.Error()),
		)
	}
}
