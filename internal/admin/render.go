package admin

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/domain"
	"furnistor/storefront/internal/state"
)

const placeholderThumb = "https://via.placeholder.com/44x44.png?text=Cat"

// Page is everything needed to render an admin form.
type Page struct {
	Def           FormDefinition
	State         *FormState
	Flash         state.Flash
	Categories    []domain.Category
	CategoriesErr error
	Accept        string
}

// RenderForm patches the admin template with the page state.
func RenderForm(template []byte, p Page) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin template: %w", err)
	}

	form := doc.Find("#" + p.Def.FormID)
	if form.Length() == 0 {
		form = doc.Selection
	} else {
		form.SetAttr("method", "post")
		form.SetAttr("enctype", "multipart/form-data")
	}

	for _, name := range p.Def.Fields {
		setFieldValue(form, name, p.State.Values[name])
	}

	if p.Def.CategorySelectID != "" {
		renderCategorySelect(doc.Find("#"+p.Def.CategorySelectID), p.Categories, p.State.Values["category"])
	}
	if p.Def.SidebarID != "" {
		renderSidebar(doc, p.Def.SidebarID, p.Categories, p.CategoriesErr)
	}

	for _, g := range p.State.Groups {
		renderGroup(doc, g)
	}

	if input := doc.Find("#" + p.Def.FileInputID); input.Length() > 0 {
		input.SetAttr("name", ImagesField)
		if p.Accept != "" {
			input.SetAttr("accept", p.Accept)
		}
		input.RemoveAttr("value")
	}
	doc.Find("#" + p.Def.FileListID).Empty()

	renderMessage(doc.Find("#"+p.Def.MessageID), p.Flash)

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return nil, fmt.Errorf("failed to render admin form: %w", err)
	}
	return []byte(out), nil
}

func setFieldValue(form *goquery.Selection, name, value string) {
	form.Find(`[name="` + name + `"]`).Each(func(_ int, el *goquery.Selection) {
		switch goquery.NodeName(el) {
		case "textarea":
			el.SetText(value)
		case "select":
			el.Find("option").Each(func(_ int, opt *goquery.Selection) {
				if opt.AttrOr("value", opt.Text()) == value && value != "" {
					opt.SetAttr("selected", "selected")
				} else {
					opt.RemoveAttr("selected")
				}
			})
		default:
			el.SetAttr("value", value)
		}
	})
}

func renderMessage(area *goquery.Selection, flash state.Flash) {
	if area.Length() == 0 {
		return
	}
	if flash.IsZero() {
		area.SetAttr("class", "message")
		area.SetText("")
		return
	}
	area.SetAttr("class", "message "+flash.Kind+" show")
	area.SetText(flash.Text)
}

func renderGroup(doc *goquery.Document, g *RowGroup) {
	schema := g.Schema

	if add := doc.Find("#" + schema.AddButtonID); add.Length() > 0 {
		add.SetAttr("type", "submit")
		add.SetAttr("name", "action")
		add.SetAttr("value", "add:"+schema.Name)
		add.SetAttr("formnovalidate", "formnovalidate")
	}

	list := doc.Find("#" + schema.ListID)
	if list.Length() == 0 {
		return
	}

	var sb strings.Builder
	for i, row := range g.Rows {
		fmt.Fprintf(&sb, `<div class="%s" data-row="%d">`, html.EscapeString(schema.ItemClass), i)
		for j, field := range schema.Fields {
			sb.WriteString(`<input type="text"`)
			if field.Class != "" {
				fmt.Fprintf(&sb, ` class="%s"`, html.EscapeString(field.Class))
			}
			fmt.Fprintf(&sb, ` name="%s" placeholder="%s" value="%s" />`,
				html.EscapeString(g.InputName(i, j)),
				html.EscapeString(field.Placeholder),
				html.EscapeString(row[j]))
		}
		fmt.Fprintf(&sb, `<button type="submit" name="action" value="remove:%s:%d" class="%s" formnovalidate="formnovalidate">Remove</button>`,
			html.EscapeString(schema.Name), i, html.EscapeString(schema.RemoveClass))
		sb.WriteString(`</div>`)
	}
	list.SetHtml(sb.String())
}

func renderCategorySelect(sel *goquery.Selection, categories []domain.Category, selected string) {
	if sel.Length() == 0 {
		return
	}

	var sb strings.Builder
	for _, c := range categories {
		fmt.Fprintf(&sb, `<option value="%s"`, html.EscapeString(c.ID))
		if selected != "" && c.ID == selected {
			sb.WriteString(` selected="selected"`)
		}
		fmt.Fprintf(&sb, `>%s</option>`, html.EscapeString(c.Name))
	}
	sel.AppendHtml(sb.String())
}

func renderSidebar(doc *goquery.Document, id string, categories []domain.Category, loadErr error) {
	container := doc.Find("#" + id)
	if container.Length() == 0 {
		return
	}
	doc.Find("#allCategoriesLoading").Remove()

	switch {
	case loadErr != nil && client.StatusOf(loadErr) != 0:
		container.SetHtml(`<div style="color: #c02626; font-size: 13px;">Failed to load categories</div>`)
		return
	case loadErr != nil:
		container.SetHtml(`<div style="color: #c02626; font-size: 13px;">Error loading categories</div>`)
		return
	case len(categories) == 0:
		container.SetHtml(`<div style="color: #64748b; font-size: 13px;">No categories yet</div>`)
		return
	}

	var sb strings.Builder
	for i := range categories {
		c := &categories[i]
		thumb := c.Thumbnail()
		if thumb == "" {
			thumb = placeholderThumb
		}
		alt := c.Name
		if alt == "" {
			alt = "category"
		}

		fmt.Fprintf(&sb, `<a href="%s" class="sidebar-category"><img src="%s" alt="%s" /><span>%s</span></a>`,
			html.EscapeString("/index_decor/category/"+c.Slug),
			html.EscapeString(thumb),
			html.EscapeString(alt),
			html.EscapeString(c.Name))
	}
	container.SetHtml(sb.String())
}
