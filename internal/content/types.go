package content

import (
	"github.com/goliatone/go-folio/internal/identity"
)

// Item is one serialized content entry. Field order is the JSON order the
// page layer has always consumed.
type Item struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Excerpt    string   `json:"excerpt"`
	Tags       []string `json:"tags"`
	Featured   bool     `json:"featured"`
	Content    string   `json:"content"`
	RawContent string   `json:"rawContent"`

	// Author and Collaborators are always present; the normalizer fills
	// configured defaults when the document omits them.
	Author        string   `json:"author"`
	Authors       []string `json:"authors,omitempty"`
	Collaborators []string `json:"collaborators"`
	Order         *int     `json:"order,omitempty"`
	ReadingTime   int      `json:"readingTime,omitempty"`
	Source        string   `json:"source,omitempty"`

	Venue    string `json:"venue,omitempty"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
	DOI      string `json:"doi,omitempty"`
	Event    string `json:"event,omitempty"`
	Status   string `json:"status,omitempty"`
	Image    string `json:"image,omitempty"`

	// Draft items are filtered before serialization.
	Draft bool `json:"-"`
}

// AssignID derives the item id from its collection and slug.
func (i *Item) AssignID(collection string) {
	i.ID = identity.ItemUUID(collection, i.Slug).String()
}

// Collection is the ordered set of items written to one output file.
type Collection struct {
	Name  string
	Items []Item
}

// Len reports the number of items.
func (c Collection) Len() int {
	return len(c.Items)
}

// Find returns the item with the given slug.
func (c Collection) Find(slug string) (Item, bool) {
	for _, item := range c.Items {
		if item.Slug == slug {
			return item, true
		}
	}
	return Item{}, false
}
