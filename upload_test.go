package casinocms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eringen/casinocms/converter"
)

const csrfTestToken = "test-csrf-token"

const reviewHTML = `<!DOCTYPE html>
<html>
<head><title>Ignite</title><style>.hero { color: red; }</style></head>
<body>
  <section class="hero"><h1>{{casino.name}}</h1><p>Owner's Choice</p></section>
  <script>console.log("tracking")</script>
</body>
</html>`

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		AdminLogin: func(showError bool, csrf string) templ.Component {
			return textComponent("login")
		},
		AdminDashboard: func(templates []TemplateRecord, msg, csrf string) templ.Component {
			return textComponent("dashboard")
		},
		NotFound:    func() templ.Component { return textComponent("not found") },
		ServerError: func() templ.Component { return textComponent("server error") },
	}
}

func newTestApp(t *testing.T, admin bool, extra ...Option) (*App, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	opts := append([]Option{
		WithStore(setupTestStore(t)),
		WithFs(fs),
		WithLogger(zaptest.NewLogger(t)),
		WithAuthGate(func(echo.Context) bool { return admin }),
	}, extra...)
	a := New(SiteConfig{
		OutputDir:     "out",
		AdminPassword: "secret",
		SessionSecret: "test-session-secret",
	}, testViews(), opts...)
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })
	return a, fs
}

type upload struct {
	fields   map[string]string
	filename string
	content  string
	noCSRF   bool
}

func (u upload) request(t *testing.T, path string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range u.fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if u.filename != "" {
		part, err := w.CreateFormFile("file", u.filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, u.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if !u.noCSRF {
		req.Header.Set("X-CSRF-Token", csrfTestToken)
		req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrfTestToken})
	}
	return req
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func newReviewUpload() upload {
	return upload{
		fields: map[string]string{
			"category":      "casino-review",
			"name":          "Ignite Review",
			"slug":          "ignite-review",
			"componentName": "IgniteReview",
			"description":   "Review layout",
			"isActive":      "true",
		},
		filename: "ignite.html",
		content:  reviewHTML,
	}
}

func TestUploadRequiresAdmin(t *testing.T) {
	a, fs := newTestApp(t, false)

	rec := serve(a, newReviewUpload().request(t, "/api/admin/templates/upload"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rec))
	exists, _ := afero.DirExists(fs, "out")
	assert.False(t, exists, "nothing should be written without a session")
}

func TestUploadWithoutTokenOrSessionIsUnauthorized(t *testing.T) {
	a, _ := newTestApp(t, false)
	u := newReviewUpload()
	u.noCSRF = true

	rec := serve(a, u.request(t, "/api/admin/templates/upload"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rec))
}

func TestUploadWithSessionStillNeedsToken(t *testing.T) {
	a, _ := newTestApp(t, true)
	u := newReviewUpload()
	u.noCSRF = true

	rec := serve(a, u.request(t, "/api/admin/templates/upload"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", decodeError(t, rec))
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *upload)
		want   string
	}{
		{"missing file", func(u *upload) { u.filename = "" }, "No file uploaded"},
		{"missing category", func(u *upload) { delete(u.fields, "category") }, "Category is required"},
		{"wrong extension", func(u *upload) { u.filename = "ignite.htm" }, "Only .html files are supported"},
		{"text file", func(u *upload) { u.filename = "notes.txt" }, "Only .html files are supported"},
		{"missing name", func(u *upload) { delete(u.fields, "name") }, "Name and slug are required for a new template"},
		{"missing slug", func(u *upload) { delete(u.fields, "slug") }, "Name and slug are required for a new template"},
		{"unusable slug", func(u *upload) { u.fields["slug"] = "!!!" }, "Slug must contain letters or digits"},
		{"bad active flag", func(u *upload) { u.fields["isActive"] = "maybe" }, "isActive must be a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp(t, true)
			u := newReviewUpload()
			tt.mutate(&u)

			rec := serve(a, u.request(t, "/api/admin/templates/upload"))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec))
		})
	}
}

func TestUploadUnknownTemplateID(t *testing.T) {
	a, _ := newTestApp(t, true)
	u := upload{
		fields:   map[string]string{"category": "bonus", "templateId": "does-not-exist"},
		filename: "bonus.html",
		content:  "<p>50 Free Spins</p>",
	}

	rec := serve(a, u.request(t, "/api/admin/templates/upload"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Template not found", decodeError(t, rec))
}

func TestUploadCreatesTemplate(t *testing.T) {
	a, fs := newTestApp(t, true)

	rec := serve(a, newReviewUpload().request(t, "/api/admin/templates/upload"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "IgniteReview", res.ComponentName)
	assert.Equal(t, "ignite-review", res.Slug)
	assert.NotEmpty(t, res.TemplateID)
	assert.NotEmpty(t, res.Message)

	path := filepath.Join("out", "casino-reviews", "ignite-review.tsx")
	src, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(src), "export default function IgniteReview(")
	assert.Contains(t, string(src), ".hero { color: red; }")
	assert.NotContains(t, string(src), "tracking")

	stored, err := a.Store.GetTemplate(context.Background(), res.TemplateID)
	require.NoError(t, err)
	assert.Equal(t, "IgniteReview", stored.ComponentName)
	assert.Equal(t, path, stored.FilePath)
	assert.Equal(t, "casino-review", stored.Category)
	assert.True(t, stored.Active)
}

func TestUploadReusesExistingTemplate(t *testing.T) {
	a, fs := newTestApp(t, true)

	first := serve(a, newReviewUpload().request(t, "/api/admin/templates/upload"))
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	var created UploadResult
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &created))

	reupload := func(content string) UploadResult {
		u := upload{
			fields:   map[string]string{"category": "casino-review", "templateId": created.TemplateID},
			filename: "ignite.html",
			content:  content,
		}
		rec := serve(a, u.request(t, "/api/admin/templates/upload"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res UploadResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		return res
	}

	second := reupload(reviewHTML)
	third := reupload(`<div class="hero">Updated</div>`)

	assert.Equal(t, created.ComponentName, second.ComponentName)
	assert.Equal(t, second.ComponentName, third.ComponentName)
	assert.Equal(t, created.TemplateID, third.TemplateID)

	src, err := afero.ReadFile(fs, filepath.Join("out", "casino-reviews", "ignite-review.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "Updated")

	templates, err := a.Store.ListTemplates(context.Background())
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestUploadSlugTaken(t *testing.T) {
	a, _ := newTestApp(t, true)

	require.Equal(t, http.StatusOK, serve(a, newReviewUpload().request(t, "/api/admin/templates/upload")).Code)
	rec := serve(a, newReviewUpload().request(t, "/api/admin/templates/upload"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A template with this slug already exists", decodeError(t, rec))
}

func TestUploadCategoryDirectories(t *testing.T) {
	tests := []struct {
		category string
		dir      string
	}{
		{"casino-review", "casino-reviews"},
		{"casino-list", "casino-lists"},
		{"bonus", "bonuses"},
		{"article", "articles"},
		{"landing", "landing-pages"},
		{"comparison", "comparisons"},
		{"newsletter", "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			a, fs := newTestApp(t, true)
			u := newReviewUpload()
			u.fields["category"] = tt.category
			u.fields["slug"] = "Page For " + tt.category

			rec := serve(a, u.request(t, "/api/admin/templates/upload"))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			want := filepath.Join("out", tt.dir, "page-for-"+Slugify(tt.category)+".tsx")
			exists, err := afero.Exists(fs, want)
			require.NoError(t, err)
			assert.True(t, exists, "expected %s", want)
		})
	}
}

func TestCategoryDir(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"bonus", "bonuses"},
		{"landing", "landing-pages"},
		{"Bonus", "custom"},
		{"", "custom"},
		{"../etc", "custom"},
	}
	for _, tt := range tests {
		if got := categoryDir(tt.in); got != tt.want {
			t.Errorf("categoryDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	a, fs := newTestApp(t, true)
	u := upload{
		fields:   map[string]string{"componentName": "bonus page"},
		filename: "bonus.html",
		content:  `<p class="offer">{{bonus.amount}}</p>`,
	}

	rec := serve(a, u.request(t, "/api/admin/templates/preview"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "BonusPage", rec.Header().Get("X-Component-Name"))
	assert.Contains(t, rec.Body.String(), "export default function BonusPage(")
	assert.Contains(t, rec.Body.String(), `className="offer"`)

	exists, _ := afero.DirExists(fs, "out")
	assert.False(t, exists)
	templates, err := a.Store.ListTemplates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestListAndGetTemplates(t *testing.T) {
	a, _ := newTestApp(t, true)

	empty := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates", nil))
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	up := serve(a, newReviewUpload().request(t, "/api/admin/templates/upload"))
	require.Equal(t, http.StatusOK, up.Code, up.Body.String())
	var res UploadResult
	require.NoError(t, json.Unmarshal(up.Body.Bytes(), &res))

	list := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var templates []TemplateRecord
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, res.TemplateID, templates[0].ID)

	one := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates/"+res.TemplateID, nil))
	require.Equal(t, http.StatusOK, one.Code)
	var got TemplateRecord
	require.NoError(t, json.Unmarshal(one.Body.Bytes(), &got))
	assert.Equal(t, "ignite-review", got.Slug)

	missing := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates/nope", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Template not found", decodeError(t, missing))
}

func TestHealthz(t *testing.T) {
	a, _ := newTestApp(t, false)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownAPIRouteReturnsJSON(t *testing.T) {
	a, _ := newTestApp(t, true)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec))
}

func TestUnknownPageRendersNotFoundView(t *testing.T) {
	a, _ := newTestApp(t, true)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/nowhere/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())
}

func TestAdminPageShowsLoginWithoutSession(t *testing.T) {
	a, _ := newTestApp(t, false)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/admin/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login", rec.Body.String())
}

func TestUploadUsesConfiguredBindings(t *testing.T) {
	b, err := converter.LoadBindings(strings.NewReader("fields:\n  - literal: Golden Spin\n    field: operator.title\n"))
	require.NoError(t, err)
	a, _ := newTestApp(t, true, WithBindings(b))
	u := upload{filename: "x.html", content: `<h2>Golden Spin</h2>`}

	rec := serve(a, u.request(t, "/api/admin/templates/preview"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "data.operator?.title")
}

func TestCustomRoutes(t *testing.T) {
	a, _ := newTestApp(t, false, WithCustomRoutes(func(a *App) {
		a.Echo.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	}))

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestFailedWriteLeavesRecordVisible(t *testing.T) {
	a, _ := newTestApp(t, true, WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))

	empty := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates", nil))
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	up := serve(a, newReviewUpload().request(t, "/api/admin/templates/upload"))
	require.Equal(t, http.StatusInternalServerError, up.Code)
	assert.Equal(t, "Failed to process template upload", decodeError(t, up))

	list := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var templates []TemplateRecord
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "ignite-review", templates[0].Slug)
	assert.Empty(t, templates[0].FilePath)

	one := serve(a, httptest.NewRequest(http.MethodGet, "/api/admin/templates/"+templates[0].ID, nil))
	assert.Equal(t, http.StatusOK, one.Code)
}

func redirectMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, "/admin/", loc.Path)
	return loc.Query().Get("msg")
}

func TestAdminFormUpload(t *testing.T) {
	a, fs := newTestApp(t, true)

	rec := serve(a, newReviewUpload().request(t, "/admin/templates/upload/"))

	msg := redirectMessage(t, rec)
	assert.Contains(t, msg, "Template uploaded and converted successfully")
	assert.Contains(t, msg, "IgniteReview")
	ok, err := afero.Exists(fs, filepath.Join("out", "casino-reviews", "ignite-review.tsx"))
	require.NoError(t, err)
	assert.True(t, ok)

	dup := serve(a, newReviewUpload().request(t, "/admin/templates/upload/"))
	assert.Equal(t, "A template with this slug already exists", redirectMessage(t, dup))
}

func TestAdminFormUploadValidation(t *testing.T) {
	a, _ := newTestApp(t, true)
	u := newReviewUpload()
	delete(u.fields, "category")

	rec := serve(a, u.request(t, "/admin/templates/upload/"))

	assert.Equal(t, "Category is required", redirectMessage(t, rec))
}

func TestAdminFormUploadWithoutSession(t *testing.T) {
	a, fs := newTestApp(t, false)

	rec := serve(a, newReviewUpload().request(t, "/admin/templates/upload/"))

	assert.Empty(t, redirectMessage(t, rec))
	exists, _ := afero.DirExists(fs, "out")
	assert.False(t, exists)
}
