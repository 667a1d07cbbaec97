package admin

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/config"
	"furnistor/storefront/internal/domain"
	"furnistor/storefront/internal/state"
)

func defaultRule() FileRule {
	return FileRule{MaxFiles: 1, Extensions: []string{"avif", "webp"}, MediaTypes: []string{"image/avif", "image/webp"}}
}

func TestFileRuleValidate(t *testing.T) {
	rule := defaultRule()

	tests := []struct {
		name    string
		files   []FileInfo
		wantErr string
	}{
		{"NoFiles", nil, ""},
		{"WebP", []FileInfo{{Name: "a.webp", MediaType: "image/webp"}}, ""},
		{"ExtensionOnly", []FileInfo{{Name: "a.AVIF", MediaType: "application/octet-stream"}}, ""},
		{"MediaTypeOnly", []FileInfo{{Name: "blob", MediaType: "image/avif"}}, ""},
		{"TwoFiles", []FileInfo{{Name: "a.webp"}, {Name: "b.webp"}}, "Maximum 1 file allowed"},
		{"Jpeg", []FileInfo{{Name: "a.jpg", MediaType: "image/jpeg"}}, "Only AVIF and WebP image formats are allowed. Please choose valid files."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.files)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Message)
		})
	}
}

func TestNewFileRuleFromConfig(t *testing.T) {
	rule := NewFileRule(config.AdminConfig{MaxFiles: 2, AllowedExtensions: []string{"png"}})
	assert.NoError(t, rule.Validate([]FileInfo{{Name: "a.png"}, {Name: "b.png"}}))
	assert.Error(t, rule.Validate([]FileInfo{{Name: "a.gif"}}))
}

func TestRowGroup(t *testing.T) {
	g := NewRowGroup(CategoryForm.Groups[0])
	require.Len(t, g.Rows, 1, "one empty row by default")

	_, ok, err := g.JSON()
	require.NoError(t, err)
	assert.False(t, ok, "empty rows are not sent")

	g.Rows[0] = Row{"  Is it solid wood? ", ""}
	g.Add()
	g.Add()
	g.Rows[2] = Row{"", "Yes"}
	g.Remove(1)
	g.Remove(7)

	require.Len(t, g.Rows, 2)
	payload, ok, err := g.JSON()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"question":"Is it solid wood?","answer":""},{"question":"","answer":"Yes"}]`, payload)
}

func TestRowGroupSingleValueAndWrapped(t *testing.T) {
	features := NewRowGroup(SubcategoryForm.Groups[1])
	features.Rows[0] = Row{"Solid Wood"}
	features.Add()
	features.Add()
	features.Rows[2] = Row{" Eco-friendly "}

	payload, ok, err := features.JSON()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["Solid Wood","Eco-friendly"]`, payload)

	guidance := NewRowGroup(SubcategoryForm.Groups[0])
	guidance.Rows[0] = Row{"Size?", "Measure first"}
	payload, ok, err = guidance.JSON()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"buyingGuidance":[{"question":"Size?","answer":"Measure first"}]}`, payload)
}

func TestFormStateFromValues(t *testing.T) {
	values := url.Values{
		"name":                      {"Rugs"},
		"faqs[1][answer]":           {"A2"},
		"faqs[0][question]":         {"Q1"},
		"faqs[10][question]":        {"Q10"},
		"buyingGuidance[0][detail]": {"Oak"},
		"unrelated[0]":              {"x"},
	}

	st := FormStateFromValues(CategoryForm, values)
	assert.Equal(t, "Rugs", st.Values["name"])

	faqs := st.Group("faqs")
	require.Len(t, faqs.Rows, 3)
	assert.Equal(t, Row{"Q1", ""}, faqs.Rows[0])
	assert.Equal(t, Row{"", "A2"}, faqs.Rows[1])
	assert.Equal(t, Row{"Q10", ""}, faqs.Rows[2])
	assert.Equal(t, Row{"", "Oak"}, st.Group("buyingGuidance").Rows[0])
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(CategoryForm, "add:faqs")
	require.True(t, ok)
	assert.Equal(t, Action{Kind: "add", Group: "faqs"}, a)

	a, ok = ParseAction(SubcategoryForm, "remove:colors:2")
	require.True(t, ok)
	assert.Equal(t, Action{Kind: "remove", Group: "colors", Index: 2}, a)

	for _, raw := range []string{"", "save", "add:colors", "remove:faqs", "remove:faqs:x", "drop:faqs"} {
		_, ok := ParseAction(CategoryForm, raw)
		assert.False(t, ok, raw)
	}
}

func TestSubmissionOrder(t *testing.T) {
	st := NewFormState(SubcategoryForm)
	st.Values["name"] = "Round"
	st.Values["category"] = "c1"
	st.Group("colors").Rows[0] = Row{"Oak"}

	sub, err := st.Submission(SubcategoryForm, []client.Upload{{Field: ImagesField, FileName: "a.webp"}})
	require.NoError(t, err)

	names := make([]string, 0, len(sub.Fields))
	for _, f := range sub.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "category", "slug", "h1Tag", "metaTitle", "metaDescription", "description", "colors"}, names)
	v, _ := sub.Value("colors")
	assert.Equal(t, `["Oak"]`, v)
	assert.Len(t, sub.Files, 1)
}

const categoryTemplate = `<html><body>
<div id="allCategoriesList"><span id="allCategoriesLoading">Loading…</span></div>
<form id="categoryForm">
<input name="name"><input name="slug"><input name="h1Tag"><input name="metaTitle">
<textarea name="metaDescription"></textarea><textarea name="description"></textarea>
<input type="file" id="categoryImages"><div id="categoryFileList"></div>
<div id="categoryFaqList"></div><button id="addCategoryFaq">Add FAQ</button>
<div id="buyingGuidanceList"></div><button id="addBuyingGuidance">Add</button>
<div id="categoryMessage" class="message"></div>
<button type="submit">Create</button>
</form></body></html>`

const subcategoryTemplate = `<html><body>
<form id="subcategoryForm">
<input name="name"><select name="category" id="subcategoryCategory"><option value="">Select</option></select>
<div id="subcategoryColorsList"></div><button id="addSubcategoryColor">Add</button>
<div id="subcategoryMessage"></div>
</form></body></html>`

type fakeBackend struct {
	client.BackendClient

	categories    []domain.Category
	categoriesErr error
	createErr     error
	created       []*client.Submission
}

func (f *fakeBackend) Categories(ctx context.Context, q client.CategoryQuery) ([]domain.Category, error) {
	return f.categories, f.categoriesErr
}

func (f *fakeBackend) CreateCategory(ctx context.Context, sub *client.Submission) (*client.CreateResult, error) {
	f.created = append(f.created, sub)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &client.CreateResult{Success: true, Message: "Category created successfully"}, nil
}

func (f *fakeBackend) CreateSubcategory(ctx context.Context, sub *client.Submission) (*client.CreateResult, error) {
	f.created = append(f.created, sub)
	return &client.CreateResult{Success: true, Message: "Subcategory created"}, nil
}

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func parsePage(t *testing.T, page []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)
	return doc
}

// multipartFiles builds real multipart file headers for the given names.
func multipartFiles(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := w.CreateFormFile(ImagesField, name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("img"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[ImagesField]
}

func TestShowRendersSidebarAndFlash(t *testing.T) {
	backend := &fakeBackend{categories: []domain.Category{
		{ID: "c1", Name: "Rugs", Slug: "rugs", Images: []domain.Image{{Src: "r.webp", Thumb: "r-thumb.webp"}}},
		{ID: "c2", Name: "Lamps", Slug: "lamps"},
	}}
	flash := state.NewMemoryFlashStore(time.Minute)
	id := state.NewFlashID()
	require.NoError(t, flash.Put(context.Background(), id, state.Flash{Kind: state.FlashSuccess, Text: "✓ done"}))

	ctrl := NewCategoryController(backend, writeTemplate(t, categoryTemplate), defaultRule(), flash)
	page, err := ctrl.Show(context.Background(), id)
	require.NoError(t, err)
	doc := parsePage(t, page)

	links := doc.Find("#allCategoriesList a.sidebar-category")
	require.Equal(t, 2, links.Length())
	assert.Equal(t, "/index_decor/category/rugs", links.Eq(0).AttrOr("href", ""))
	assert.Equal(t, "r-thumb.webp", links.Eq(0).Find("img").AttrOr("src", ""))
	assert.Equal(t, placeholderThumb, links.Eq(1).Find("img").AttrOr("src", ""))
	assert.Equal(t, 0, doc.Find("#allCategoriesLoading").Length())

	msg := doc.Find("#categoryMessage")
	assert.Equal(t, "message success show", msg.AttrOr("class", ""))
	assert.Equal(t, "✓ done", msg.Text())

	assert.Equal(t, 1, doc.Find("#categoryFaqList .faq-item").Length())
	assert.Equal(t, "add:faqs", doc.Find("#addCategoryFaq").AttrOr("value", ""))
	assert.Equal(t, "images", doc.Find("#categoryImages").AttrOr("name", ""))
	assert.Equal(t, "multipart/form-data", doc.Find("#categoryForm").AttrOr("enctype", ""))

	page, err = ctrl.Show(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "", parsePage(t, page).Find("#categoryMessage").Text(), "flash shown once")
}

func TestShowSidebarStates(t *testing.T) {
	flash := state.NewMemoryFlashStore(time.Minute)

	for name, tc := range map[string]struct {
		backend *fakeBackend
		want    string
	}{
		"Empty":     {&fakeBackend{}, "No categories yet"},
		"HTTPError": {&fakeBackend{categoriesErr: &client.FetchFailure{Status: 500}}, "Failed to load categories"},
		"Transport": {&fakeBackend{categoriesErr: &client.FetchFailure{Err: assert.AnError}}, "Error loading categories"},
	} {
		t.Run(name, func(t *testing.T) {
			ctrl := NewCategoryController(tc.backend, writeTemplate(t, categoryTemplate), defaultRule(), flash)
			page, err := ctrl.Show(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsePage(t, page).Find("#allCategoriesList").Text())
		})
	}
}

func TestSubmitZeroFilesSucceeds(t *testing.T) {
	backend := &fakeBackend{}
	flash := state.NewMemoryFlashStore(time.Minute)
	ctrl := NewCategoryController(backend, writeTemplate(t, categoryTemplate), defaultRule(), flash)

	out, err := ctrl.Submit(context.Background(), url.Values{
		"name":              {"Rugs"},
		"slug":              {"rugs"},
		"faqs[0][question]": {"Washable?"},
		"faqs[0][answer]":   {"Yes"},
	}, nil)
	require.NoError(t, err)
	require.True(t, out.Redirect)

	require.Len(t, backend.created, 1)
	sub := backend.created[0]
	assert.Empty(t, sub.Files)
	faqs, ok := sub.Value("faqs")
	require.True(t, ok)
	assert.Equal(t, `[{"question":"Washable?","answer":"Yes"}]`, faqs)
	_, ok = sub.Value("buyingGuidance")
	assert.False(t, ok)

	got, err := flash.Take(context.Background(), out.FlashID)
	require.NoError(t, err)
	assert.Equal(t, "✓ Category created successfully", got.Text)
}

func TestSubmitTwoFilesRejectedBeforeNetwork(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := NewCategoryController(backend, writeTemplate(t, categoryTemplate), defaultRule(), state.NewMemoryFlashStore(time.Minute))

	out, err := ctrl.Submit(context.Background(), url.Values{"name": {"Rugs"}}, multipartFiles(t, "a.webp", "b.webp"))
	require.NoError(t, err)

	assert.Empty(t, backend.created)
	assert.False(t, out.Redirect)
	assert.Equal(t, http.StatusUnprocessableEntity, out.Status)

	doc := parsePage(t, out.Page)
	assert.Equal(t, "Maximum 1 file allowed", doc.Find("#categoryMessage").Text())
	assert.Equal(t, "Rugs", doc.Find(`input[name="name"]`).AttrOr("value", ""))
}

func TestSubmitSendsValidFile(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := NewCategoryController(backend, writeTemplate(t, categoryTemplate), defaultRule(), state.NewMemoryFlashStore(time.Minute))

	out, err := ctrl.Submit(context.Background(), url.Values{"name": {"Rugs"}}, multipartFiles(t, "rug.webp"))
	require.NoError(t, err)
	assert.True(t, out.Redirect)

	require.Len(t, backend.created, 1)
	require.Len(t, backend.created[0].Files, 1)
	assert.Equal(t, "rug.webp", backend.created[0].Files[0].FileName)
	assert.Equal(t, "img", string(backend.created[0].Files[0].Content))
}

func TestSubmitFailureKeepsState(t *testing.T) {
	backend := &fakeBackend{createErr: &client.FetchFailure{Status: http.StatusBadRequest, Message: "Slug already exists"}}
	ctrl := NewCategoryController(backend, writeTemplate(t, categoryTemplate), defaultRule(), state.NewMemoryFlashStore(time.Minute))

	out, err := ctrl.Submit(context.Background(), url.Values{
		"name":              {"Rugs"},
		"description":       {"Soft & warm"},
		"faqs[0][question]": {"Q"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, out.Status)

	doc := parsePage(t, out.Page)
	msg := doc.Find("#categoryMessage")
	assert.Equal(t, "message error show", msg.AttrOr("class", ""))
	assert.Equal(t, "✗ Slug already exists", msg.Text())
	assert.Equal(t, "Soft & warm", doc.Find(`textarea[name="description"]`).Text())
	assert.Equal(t, "Q", doc.Find(`input[name="faqs[0][question]"]`).AttrOr("value", ""))
}

func TestSubmitRowActions(t *testing.T) {
	backend := &fakeBackend{categories: []domain.Category{{ID: "c1", Name: "Rugs"}, {ID: "c2", Name: "Lamps"}}}
	ctrl := NewSubcategoryController(backend, writeTemplate(t, subcategoryTemplate), defaultRule(), state.NewMemoryFlashStore(time.Minute))

	out, err := ctrl.Submit(context.Background(), url.Values{
		"action":    {"add:colors"},
		"category":  {"c2"},
		"colors[0]": {"Oak"},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, backend.created)

	doc := parsePage(t, out.Page)
	rows := doc.Find("#subcategoryColorsList .color-item")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "Oak", rows.Eq(0).Find("input").AttrOr("value", ""))
	assert.Equal(t, "remove:colors:1", rows.Eq(1).Find("button").AttrOr("value", ""))

	options := doc.Find("#subcategoryCategory option")
	require.Equal(t, 3, options.Length())
	assert.Equal(t, "c2", doc.Find("#subcategoryCategory option[selected]").AttrOr("value", ""))

	out, err = ctrl.Submit(context.Background(), url.Values{
		"action":    {"remove:colors:0"},
		"colors[0]": {"Oak"},
		"colors[1]": {"Teak"},
	}, nil)
	require.NoError(t, err)
	rows = parsePage(t, out.Page).Find("#subcategoryColorsList .color-item")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "Teak", rows.Find("input").AttrOr("value", ""))
	assert.Equal(t, "colors[0]", rows.Find("input").AttrOr("name", ""))
}

func TestRenderFormEscapes(t *testing.T) {
	st := NewFormState(CategoryForm)
	st.Values["name"] = `"><script>x</script>`
	st.Group("faqs").Rows[0] = Row{`<b>`, ""}

	page, err := RenderForm([]byte(categoryTemplate), Page{Def: CategoryForm, State: st})
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(page), "<script>x"))
	assert.Equal(t, `<b>`, parsePage(t, page).Find(`input[name="faqs[0][question]"]`).AttrOr("value", ""))
}
