package casinocms

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/eringen/casinocms/converter"
)

const uploadFailed = "Failed to process template upload"

// uploadError is a rejected upload: the status for API clients and the
// message shown to either kind of client.
type uploadError struct {
	code int
	msg  string
}

func badRequest(msg string) *uploadError {
	return &uploadError{code: http.StatusBadRequest, msg: msg}
}

func (a *App) uploadFailure(step string, err error) *uploadError {
	a.Logger.Error("template upload failed", zap.String("step", step), zap.Error(err))
	return &uploadError{code: http.StatusInternalServerError, msg: uploadFailed}
}

// uploadedHTML validates the "file" field of a multipart request.
func (a *App) uploadedHTML(c echo.Context) (*multipart.FileHeader, string) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, "No file uploaded"
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".html") {
		return nil, "Only .html files are supported"
	}
	if file.Size > a.Config.MaxUploadSize {
		return nil, fmt.Sprintf("File too large (max %d bytes)", a.Config.MaxUploadSize)
	}
	return file, ""
}

func (a *App) convert(file *multipart.FileHeader, componentName, slug string) (*converter.Result, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	return converter.Convert(src, converter.Options{
		ComponentName: componentName,
		Slug:          slug,
		PropsType:     a.Config.PropsType,
		TypesImport:   a.Config.TypesImport,
		Bindings:      a.bindings,
	})
}

func (a *App) handleTemplateUpload(c echo.Context) error {
	res, uerr := a.processUpload(c)
	if uerr != nil {
		return jsonError(c, uerr.code, uerr.msg)
	}
	return c.JSON(http.StatusOK, res)
}

// handleAdminUpload serves the dashboard forms. Every outcome redirects
// back to the dashboard with a message.
func (a *App) handleAdminUpload(c echo.Context) error {
	if !a.authGate(c) {
		return redirectAdmin(c, "")
	}
	res, uerr := a.processUpload(c)
	if uerr != nil {
		return redirectAdmin(c, uerr.msg)
	}
	return redirectAdmin(c, fmt.Sprintf("%s: %s saved as %s", res.Message, res.ComponentName, res.Slug))
}

func (a *App) processUpload(c echo.Context) (UploadResult, *uploadError) {
	if !a.uploadLimiter.Allow(c.RealIP()) {
		return UploadResult{}, &uploadError{code: http.StatusTooManyRequests, msg: "Too many uploads. Try again later."}
	}
	ctx := c.Request().Context()

	file, msg := a.uploadedHTML(c)
	if msg != "" {
		return UploadResult{}, badRequest(msg)
	}
	category := strings.TrimSpace(c.FormValue("category"))
	if category == "" {
		return UploadResult{}, badRequest("Category is required")
	}

	var rec TemplateRecord
	if id := strings.TrimSpace(c.FormValue("templateId")); id != "" {
		found, err := a.Store.GetTemplate(ctx, id)
		if errors.Is(err, ErrTemplateNotFound) {
			return UploadResult{}, &uploadError{code: http.StatusNotFound, msg: "Template not found"}
		}
		if err != nil {
			return UploadResult{}, a.uploadFailure("lookup", err)
		}
		rec = found
	} else {
		created, msg, err := a.createFromForm(ctx, c, category)
		if msg != "" {
			return UploadResult{}, badRequest(msg)
		}
		if err != nil {
			return UploadResult{}, a.uploadFailure("create", err)
		}
		// The record exists from here on even if a later step fails.
		a.Cache.Invalidate()
		rec = created
	}

	start := time.Now()
	result, err := a.convert(file, rec.ComponentName, rec.Slug)
	conversionDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	if err != nil {
		conversionsTotal.WithLabelValues(category, "error").Inc()
		return UploadResult{}, a.uploadFailure("convert", err)
	}

	path, err := a.writeComponent(category, rec.Slug, result.Source)
	if err != nil {
		conversionsTotal.WithLabelValues(category, "error").Inc()
		return UploadResult{}, a.uploadFailure("write", err)
	}
	if err := a.Store.UpdateArtifact(ctx, rec.ID, result.ComponentName, path); err != nil {
		conversionsTotal.WithLabelValues(category, "error").Inc()
		return UploadResult{}, a.uploadFailure("update", err)
	}
	a.Cache.Invalidate()
	conversionsTotal.WithLabelValues(category, "ok").Inc()
	boundExpressions.Observe(float64(result.Bound))

	a.Logger.Info("template converted",
		zap.String("template_id", rec.ID),
		zap.String("slug", rec.Slug),
		zap.String("component", result.ComponentName),
		zap.String("path", path),
		zap.Int("bound", result.Bound),
		zap.Bool("client", result.Client),
	)
	return UploadResult{
		ComponentName: result.ComponentName,
		Slug:          rec.Slug,
		TemplateID:    rec.ID,
		Message:       "Template uploaded and converted successfully",
	}, nil
}

// createFromForm creates the metadata record for an upload without a
// templateId. A non-empty message is a validation failure.
func (a *App) createFromForm(ctx context.Context, c echo.Context, category string) (TemplateRecord, string, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if name == "" || slug == "" {
		return TemplateRecord{}, "Name and slug are required for a new template", nil
	}
	slug = Slugify(slug)
	if slug == "" {
		return TemplateRecord{}, "Slug must contain letters or digits", nil
	}
	active := true
	if v := c.FormValue("isActive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil && v != "on" {
			return TemplateRecord{}, "isActive must be a boolean", nil
		}
		active = b || v == "on"
	}

	rec, err := a.Store.CreateTemplate(ctx, TemplateRecord{
		Name:          name,
		Slug:          slug,
		ComponentName: converter.ComponentName(c.FormValue("componentName"), slug),
		Category:      category,
		Description:   strings.TrimSpace(c.FormValue("description")),
		Active:        active,
	})
	if errors.Is(err, ErrSlugTaken) {
		return TemplateRecord{}, "A template with this slug already exists", nil
	}
	return rec, "", err
}

// writeComponent stores the generated source at
// <OutputDir>/<category dir>/<slug>.tsx and returns the path.
func (a *App) writeComponent(category, slug, source string) (string, error) {
	dir := filepath.Join(a.Config.OutputDir, categoryDir(category))
	ok, err := afero.DirExists(a.fs, dir)
	if err != nil {
		return "", err
	}
	if !ok {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	path := filepath.Join(dir, Slugify(slug)+".tsx")
	if err := afero.WriteFile(a.fs, path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("write component: %w", err)
	}
	return path, nil
}

func (a *App) handleTemplatePreview(c echo.Context) error {
	file, msg := a.uploadedHTML(c)
	if msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)))
	}
	result, err := a.convert(file, c.FormValue("componentName"), slug)
	if err != nil {
		a.Logger.Error("template preview failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, uploadFailed)
	}
	c.Response().Header().Set("X-Component-Name", result.ComponentName)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Source))
}

func (a *App) handleListTemplates(c echo.Context) error {
	templates, err := a.Cache.List(c.Request().Context())
	if err != nil {
		return err
	}
	if templates == nil {
		templates = []TemplateRecord{}
	}
	return c.JSON(http.StatusOK, templates)
}

func (a *App) handleGetTemplate(c echo.Context) error {
	t, err := a.Cache.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrTemplateNotFound) {
		return jsonError(c, http.StatusNotFound, "Template not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}
