package models

// Category is a top-level grouping of soundtracks.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
}

// CategoryDetail is a [Category] with one level of children: its top-level subcategories and
// the soundtracks attached directly to it.
type CategoryDetail struct {
	Category
	Subcategories []Subcategory `json:"subcategories"`
	Soundtracks   []Soundtrack  `json:"soundtracks"`
}

// Subcategory belongs to exactly one category and optionally to a parent subcategory of the same category.
//
// CategoryName and ParentName are denormalized display labels.
type Subcategory struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Category      int64         `json:"category"`
	CategoryName  string        `json:"category_name"`
	Thumbnail     *string       `json:"thumbnail"`
	Parent        *int64        `json:"subcategory"`
	ParentName    string        `json:"parent_name,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`
	Soundtracks   []Soundtrack  `json:"soundtracks"`
}

// IsTopLevel reports whether the subcategory hangs directly off its category.
func (s Subcategory) IsTopLevel() bool {
	return s.Parent == nil
}

// Soundtrack is a leaf entry that links to external media.
type Soundtrack struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Thumbnail   *string `json:"thumbnail"`
	Category    int64   `json:"category,omitempty"`
	Subcategory *int64  `json:"subcategory,omitempty"`
}

// DeleteImpact counts the entities a cascade delete would remove, excluding the target itself.
type DeleteImpact struct {
	SubcategoriesCount int `json:"subcategories_count"`
	SoundtracksCount   int `json:"soundtracks_count"`
}

// Empty reports whether deleting the target removes nothing else.
func (d DeleteImpact) Empty() bool {
	return d.SubcategoriesCount == 0 && d.SoundtracksCount == 0
}

// Summary returns the counts formatted for confirmation prompts.
func (d DeleteImpact) Summary() string {
	return pluralize(d.SubcategoriesCount, "subcategory", "subcategories") + " and " +
		pluralize(d.SoundtracksCount, "soundtrack", "soundtracks")
}
