package admin

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"

	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/domain"
	"furnistor/storefront/internal/state"

	log "github.com/sirupsen/logrus"
)

type createFunc func(ctx context.Context, sub *client.Submission) (*client.CreateResult, error)

// Controller serves one admin form: showing it, handling row actions and
// forwarding submissions to the backend.
type Controller struct {
	def          FormDefinition
	client       client.BackendClient
	create       createFunc
	templatePath string
	rule         FileRule
	flash        state.FlashStore
}

func NewCategoryController(c client.BackendClient, templatePath string, rule FileRule, flash state.FlashStore) *Controller {
	return &Controller{
		def:          CategoryForm,
		client:       c,
		create:       c.CreateCategory,
		templatePath: templatePath,
		rule:         rule,
		flash:        flash,
	}
}

func NewSubcategoryController(c client.BackendClient, templatePath string, rule FileRule, flash state.FlashStore) *Controller {
	return &Controller{
		def:          SubcategoryForm,
		client:       c,
		create:       c.CreateSubcategory,
		templatePath: templatePath,
		rule:         rule,
		flash:        flash,
	}
}

func (c *Controller) Name() string {
	return c.def.Name
}

// Outcome is the result of a form POST: either a page to show with Status,
// or a redirect carrying the id of a stored flash.
type Outcome struct {
	Status   int
	Page     []byte
	Redirect bool
	FlashID  string
}

// Show renders a blank form, with the flash stored under flashID if any.
func (c *Controller) Show(ctx context.Context, flashID string) ([]byte, error) {
	var flash state.Flash
	if flashID != "" && state.ValidFlashID(flashID) {
		f, err := c.flash.Take(ctx, flashID)
		if err != nil {
			log.Warnf("⚠️ %s form: %v", c.def.Name, err)
		}
		flash = f
	}
	return c.render(ctx, NewFormState(c.def), flash)
}

// Submit handles a posted form. Row actions only re-render. A file rule
// violation is reported without contacting the backend. Backend failures
// re-render the form with what was typed.
func (c *Controller) Submit(ctx context.Context, values url.Values, files []*multipart.FileHeader) (*Outcome, error) {
	st := FormStateFromValues(c.def, values)

	if action, ok := ParseAction(c.def, values.Get("action")); ok {
		st.Apply(action)
		return c.pageOutcome(ctx, http.StatusOK, st, state.Flash{})
	}

	if err := c.rule.Validate(fileInfos(files)); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		log.Infof("%s form rejected: %s", c.def.Name, verr.Message)
		return c.pageOutcome(ctx, http.StatusUnprocessableEntity, st, state.Flash{Kind: state.FlashError, Text: verr.Message})
	}

	uploads, err := readUploads(ImagesField, files)
	if err != nil {
		return nil, err
	}

	sub, err := st.Submission(c.def, uploads)
	if err != nil {
		return nil, err
	}

	result, err := c.create(ctx, sub)
	if err != nil {
		log.Errorf("❌ create %s: %v", c.def.Name, err)
		return c.pageOutcome(ctx, failureStatus(err), st, state.Flash{Kind: state.FlashError, Text: "✗ " + userMessage(err)})
	}

	success := state.Flash{Kind: state.FlashSuccess, Text: "✓ " + result.Message}
	id := state.NewFlashID()
	if err := c.flash.Put(ctx, id, success); err != nil {
		log.Warnf("⚠️ %s form: %v", c.def.Name, err)
		return c.pageOutcome(ctx, http.StatusOK, NewFormState(c.def), success)
	}
	return &Outcome{Redirect: true, FlashID: id}, nil
}

func (c *Controller) pageOutcome(ctx context.Context, status int, st *FormState, flash state.Flash) (*Outcome, error) {
	page, err := c.render(ctx, st, flash)
	if err != nil {
		return nil, err
	}
	return &Outcome{Status: status, Page: page}, nil
}

func (c *Controller) render(ctx context.Context, st *FormState, flash state.Flash) ([]byte, error) {
	template, err := os.ReadFile(c.templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s form template: %w", c.def.Name, err)
	}

	categories, catErr := c.categories(ctx)

	return RenderForm(template, Page{
		Def:           c.def,
		State:         st,
		Flash:         flash,
		Categories:    categories,
		CategoriesErr: catErr,
		Accept:        c.accept(),
	})
}

// categories feeds the sidebar and the parent select. Failure is shown in
// the sidebar and never blocks the form.
func (c *Controller) categories(ctx context.Context) ([]domain.Category, error) {
	if c.def.SidebarID == "" && c.def.CategorySelectID == "" {
		return nil, nil
	}

	categories, err := c.client.Categories(ctx, client.CategoryQuery{})
	if err != nil {
		log.Errorf("❌ categories for %s form: %v", c.def.Name, err)
		return nil, err
	}
	return categories, nil
}

func (c *Controller) accept() string {
	parts := make([]string, 0, len(c.rule.Extensions)+len(c.rule.MediaTypes))
	for _, ext := range c.rule.Extensions {
		parts = append(parts, "."+ext)
	}
	parts = append(parts, c.rule.MediaTypes...)
	return strings.Join(parts, ",")
}

func userMessage(err error) string {
	var ff *client.FetchFailure
	if errors.As(err, &ff) {
		return ff.UserMessage()
	}
	return err.Error()
}

func failureStatus(err error) int {
	status := client.StatusOf(err)
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
