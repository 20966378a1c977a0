package models

// Payload is implemented by every write payload.
type Payload interface {
	Fields() []Field
	Upload() *Upload
	Validate() error
}

var (
	_ Payload = CategoryInput{}
	_ Payload = SubcategoryInput{}
	_ Payload = SoundtrackInput{}
)

// CategoryTree is a category with its full subtree, assembled from one-level API responses.
type CategoryTree struct {
	Category      Category          `json:"category"`
	Subcategories []SubcategoryTree `json:"subcategories"`
	Soundtracks   []Soundtrack      `json:"soundtracks"`
}

// SubcategoryTree is a subcategory with its full subtree.
// The embedded Subcategory carries no nested lists; children live in Children.
type SubcategoryTree struct {
	Subcategory Subcategory       `json:"subcategory"`
	Children    []SubcategoryTree `json:"children"`
	Soundtracks []Soundtrack      `json:"soundtracks"`
}

// Counts returns the number of subcategories and soundtracks below the category.
func (t *CategoryTree) Counts() DeleteImpact {
	impact := DeleteImpact{SoundtracksCount: len(t.Soundtracks)}
	for i := range t.Subcategories {
		c := t.Subcategories[i].Counts()
		impact.SubcategoriesCount += c.SubcategoriesCount + 1
		impact.SoundtracksCount += c.SoundtracksCount
	}
	return impact
}

// Counts returns the number of descendant subcategories and soundtracks owned by the subtree.
func (t *SubcategoryTree) Counts() DeleteImpact {
	impact := DeleteImpact{SoundtracksCount: len(t.Soundtracks)}
	for i := range t.Children {
		c := t.Children[i].Counts()
		impact.SubcategoriesCount += c.SubcategoriesCount + 1
		impact.SoundtracksCount += c.SoundtracksCount
	}
	return impact
}

// Walk visits every subcategory in the tree depth first, passing its depth (0 for top-level) and
// the chain of ancestor names.
func (t *CategoryTree) Walk(fn func(node *SubcategoryTree, depth int, path []string)) {
	var visit func(nodes []SubcategoryTree, depth int, path []string)
	visit = func(nodes []SubcategoryTree, depth int, path []string) {
		for i := range nodes {
			fn(&nodes[i], depth, path)
			next := append(append([]string{}, path...), nodes[i].Subcategory.Name)
			visit(nodes[i].Children, depth+1, next)
		}
	}
	visit(t.Subcategories, 0, []string{t.Category.Name})
}
