package domain

// Category is shared by categories and subcategories.
type Category struct {
	ID                string  `json:"_id,omitempty"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	H1Tag             string  `json:"h1Tag,omitempty"`
	MetaTitle         string  `json:"metaTitle,omitempty"`
	MetaDescription   string  `json:"metaDescription,omitempty"`
	HeaderDescription string  `json:"headerDescription,omitempty"`
	Description       string  `json:"description,omitempty"`
	Images            []Image `json:"images,omitempty"`
}

// DisplayTitle is the visible heading: h1Tag, then name.
func (c *Category) DisplayTitle() string {
	if c.H1Tag != "" {
		return c.H1Tag
	}
	return c.Name
}

// PageTitle is the document title stem: metaTitle, then name.
func (c *Category) PageTitle() string {
	if c.MetaTitle != "" {
		return c.MetaTitle
	}
	return c.Name
}

// PreferredDescription is headerDescription, then description.
func (c *Category) PreferredDescription() string {
	if c.HeaderDescription != "" {
		return c.HeaderDescription
	}
	return c.Description
}

// Thumbnail returns the first image's thumb or src, empty when there is none.
func (c *Category) Thumbnail() string {
	if len(c.Images) == 0 {
		return ""
	}
	if c.Images[0].Thumb != "" {
		return c.Images[0].Thumb
	}
	return c.Images[0].Src
}
