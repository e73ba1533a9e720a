package browse

import (
	"strings"

	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/render"
)

// Field is one labelled line of the detail pane.
type Field struct {
	Label string
	Key   string
}

// Entry is one browsable item with its save control.
type Entry struct {
	Heading  string
	Subtitle string
	URL      string
	Category model.Category
	Payload  model.Payload
	Button   *button.Button
}

var detailFields = map[model.Category][]Field{
	model.CategoryCertificate: {
		{"Provider", "provider"},
		{"Relevance", "relevance_score"},
		{"Cost", "cost"},
		{"Duration", "duration"},
		{"Description", "description"},
	},
	model.CategoryCourse: {
		{"Provider", "provider"},
		{"Relevance", "relevance_score"},
		{"Level", "difficulty"},
		{"Duration", "duration"},
		{"Price", "price"},
		{"Description", "description"},
	},
	model.CategoryJob: {
		{"Industry", "industry"},
		{"Size", "company_size"},
		{"Why relevant", "why_relevant"},
		{"Description", "description"},
	},
}

func newEntry(category model.Category, payload model.Payload, b *button.Button) Entry {
	e := Entry{Category: category, Payload: payload, Button: b}
	switch category {
	case model.CategoryCertificate:
		e.Heading, e.URL = payload.String("name"), payload.String("url")
		e.Subtitle = joinNonEmpty(" · ", payload.String("provider"), payload.String("cost"))
	case model.CategoryCourse:
		e.Heading, e.URL = payload.String("title"), payload.String("url")
		e.Subtitle = joinNonEmpty(" · ", payload.String("provider"), payload.String("price"))
	default:
		e.Heading = payload.String("name")
		e.Subtitle = joinNonEmpty(" · ", payload.String("industry"), payload.String("company_size"))
		if q := payload.String("search_query"); q != "" {
			e.URL = render.SearchURL(q)
		}
	}
	return e
}

// EntriesFromResults registers a button per search result and returns the
// entries in result order.
func EntriesFromResults(entities []model.Entity, reg *button.Registry) []Entry {
	out := make([]Entry, 0, len(entities))
	for _, ent := range entities {
		p := ent.Payload()
		out = append(out, newEntry(ent.Category(), p, reg.Add(ent.Category(), p)))
	}
	return out
}

// EntriesFromSaved registers a button per saved item. The buttons start as
// Saved because the items came from the cache.
func EntriesFromSaved(items []model.SavedItem, reg *button.Registry) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		out = append(out, newEntry(it.Category, it.Payload, reg.Add(it.Category, it.Payload)))
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
