package admin

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"furnistor/storefront/internal/client"
)

const ImagesField = "images"

// FormDefinition describes one admin form: its plain fields, its repeatable
// groups and the element ids its template uses.
type FormDefinition struct {
	Name string

	FormID      string
	MessageID   string
	FileInputID string
	FileListID  string

	Fields []string
	Groups []RowSchema

	// CategorySelectID is the id of the parent category <select>, if any.
	CategorySelectID string
	// SidebarID is the id of the category sidebar list, if any.
	SidebarID string
}

func (d FormDefinition) group(name string) (RowSchema, bool) {
	for _, g := range d.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return RowSchema{}, false
}

var faqFields = []RowField{
	{Key: "question", Class: "faq-question", Placeholder: "Question"},
	{Key: "answer", Class: "faq-answer", Placeholder: "Answer"},
}

// CategoryForm is the category creation form.
var CategoryForm = FormDefinition{
	Name:        "category",
	FormID:      "categoryForm",
	MessageID:   "categoryMessage",
	FileInputID: "categoryImages",
	FileListID:  "categoryFileList",
	Fields:      []string{"name", "slug", "h1Tag", "metaTitle", "metaDescription", "description"},
	Groups: []RowSchema{
		{
			Name:        "faqs",
			FormField:   "faqs",
			ListID:      "categoryFaqList",
			AddButtonID: "addCategoryFaq",
			ItemClass:   "file-item faq-item",
			RemoveClass: "remove-faq",
			Fields:      faqFields,
		},
		{
			Name:        "buyingGuidance",
			FormField:   "buyingGuidance",
			ListID:      "buyingGuidanceList",
			AddButtonID: "addBuyingGuidance",
			ItemClass:   "file-item buying-guidance-item",
			RemoveClass: "remove-bg",
			Fields: []RowField{
				{Key: "specification", Class: "buying-guidance-specification", Placeholder: "Specification (e.g., Material)"},
				{Key: "detail", Class: "buying-guidance-detail", Placeholder: "Detail (e.g., Premium Oak Wood)"},
			},
		},
	},
	SidebarID: "allCategoriesList",
}

func singleValue(placeholder string) []RowField {
	return []RowField{{Placeholder: placeholder}}
}

// SubcategoryForm is the subcategory creation form. Its buying guidance rows
// are question/answer pairs sent inside descriptionStructured, unlike the
// category form's specification/detail rows.
var SubcategoryForm = FormDefinition{
	Name:        "subcategory",
	FormID:      "subcategoryForm",
	MessageID:   "subcategoryMessage",
	FileInputID: "subcategoryImages",
	FileListID:  "subcategoryFileList",
	Fields:      []string{"name", "category", "slug", "h1Tag", "metaTitle", "metaDescription", "description"},
	Groups: []RowSchema{
		{
			Name:        "guidance",
			FormField:   "descriptionStructured",
			WrapKey:     "buyingGuidance",
			ListID:      "buyingGuidanceList",
			AddButtonID: "addBuyingGuidance",
			ItemClass:   "guidance-item",
			RemoveClass: "remove-btn",
			Fields: []RowField{
				{Key: "question", Class: "guidance-question", Placeholder: "Question"},
				{Key: "answer", Class: "guidance-answer", Placeholder: "Answer"},
			},
		},
		{
			Name:        "features",
			FormField:   "features",
			ListID:      "subcategoryFeaturesList",
			AddButtonID: "addSubcategoryFeature",
			ItemClass:   "file-item feature-item",
			RemoveClass: "remove-feature",
			Fields:      singleValue("e.g., Solid Wood, Hand-finished, Eco-friendly"),
		},
		{
			Name:        "colors",
			FormField:   "colors",
			ListID:      "subcategoryColorsList",
			AddButtonID: "addSubcategoryColor",
			ItemClass:   "file-item color-item",
			RemoveClass: "remove-color",
			Fields:      singleValue("e.g., Oak, Walnut, Black, White"),
		},
		{
			Name:        "materials",
			FormField:   "materials",
			ListID:      "subcategoryMaterialsList",
			AddButtonID: "addSubcategoryMaterial",
			ItemClass:   "file-item material-item",
			RemoveClass: "remove-material",
			Fields:      singleValue("e.g., Oak, Walnut, Leather, Fabric"),
		},
		{
			Name:        "faqs",
			FormField:   "faqs",
			ListID:      "subcategoryFaqList",
			AddButtonID: "addSubcategoryFaq",
			ItemClass:   "file-item faq-item",
			RemoveClass: "remove-faq",
			Fields:      faqFields,
		},
	},
	CategorySelectID: "subcategoryCategory",
}

// FormState is what the admin typed, kept across re-renders.
type FormState struct {
	Values map[string]string
	Groups []*RowGroup
}

// NewFormState is a blank form with one empty row per group.
func NewFormState(def FormDefinition) *FormState {
	s := &FormState{Values: make(map[string]string, len(def.Fields))}
	for _, schema := range def.Groups {
		s.Groups = append(s.Groups, NewRowGroup(schema))
	}
	return s
}

// FormStateFromValues rebuilds the state from a posted form.
func FormStateFromValues(def FormDefinition, values url.Values) *FormState {
	s := &FormState{Values: make(map[string]string, len(def.Fields))}
	for _, name := range def.Fields {
		s.Values[name] = values.Get(name)
	}
	for _, schema := range def.Groups {
		s.Groups = append(s.Groups, rowGroupFromValues(schema, values))
	}
	return s
}

func (s *FormState) Group(name string) *RowGroup {
	for _, g := range s.Groups {
		if g.Schema.Name == name {
			return g
		}
	}
	return nil
}

// Action is a row add/remove request posted by a form button.
type Action struct {
	Kind  string
	Group string
	Index int
}

// ParseAction reads "add:<group>" and "remove:<group>:<i>". ok is false for
// an empty or unknown action, which means a plain submit.
func ParseAction(def FormDefinition, raw string) (Action, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return Action{}, false
	}
	if _, ok := def.group(parts[1]); !ok {
		return Action{}, false
	}

	switch {
	case parts[0] == "add" && len(parts) == 2:
		return Action{Kind: "add", Group: parts[1]}, true
	case parts[0] == "remove" && len(parts) == 3:
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			return Action{}, false
		}
		return Action{Kind: "remove", Group: parts[1], Index: i}, true
	default:
		return Action{}, false
	}
}

// Apply performs the action on the form state.
func (s *FormState) Apply(a Action) {
	g := s.Group(a.Group)
	if g == nil {
		return
	}
	switch a.Kind {
	case "add":
		g.Add()
	case "remove":
		g.Remove(a.Index)
	}
}

// Submission assembles the multipart payload: plain fields in form order,
// then non-empty groups as JSON, then the images.
func (s *FormState) Submission(def FormDefinition, uploads []client.Upload) (*client.Submission, error) {
	sub := &client.Submission{}
	for _, name := range def.Fields {
		sub.Add(name, s.Values[name])
	}

	for _, g := range s.Groups {
		payload, ok, err := g.JSON()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s: %w", g.Schema.Name, err)
		}
		if ok {
			sub.Add(g.Schema.FormField, payload)
		}
	}

	for _, u := range uploads {
		sub.Attach(u)
	}
	return sub, nil
}
