package domain

type ResourceKind string

func (k ResourceKind) String() string {
	return string(k)
}

const (
	ProductByID       ResourceKind = "product-by-id"
	ProductBySlug     ResourceKind = "product-by-slug"
	ProductByArticle  ResourceKind = "product-by-article"
	CategoryBySlug    ResourceKind = "category"
	SubcategoryBySlug ResourceKind = "subcategory"
)

// ResourceIdentifier addresses one backend entity. It is derived from the
// request URL once per render and never stored.
type ResourceIdentifier struct {
	Kind  ResourceKind `json:"kind"`
	Value string       `json:"value"`
}

func (r ResourceIdentifier) IsProduct() bool {
	switch r.Kind {
	case ProductByID, ProductBySlug, ProductByArticle:
		return true
	default:
		return false
	}
}

func (r ResourceIdentifier) String() string {
	return r.Kind.String() + ":" + r.Value
}
