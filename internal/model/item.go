package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Category is the kind of saved item. Values match the backend's `type` field.
type Category string

const (
	CategoryCertificate Category = "certificate"
	CategoryCourse      Category = "course"
	CategoryJob         Category = "job"
)

// Categories lists every category in hydration order.
func Categories() []Category {
	return []Category{CategoryCertificate, CategoryCourse, CategoryJob}
}

// ParseCategory converts a raw string to a Category. Plural forms are accepted
// ("courses" -> course) since the dashboard and CLI use them interchangeably.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	switch c {
	case CategoryCertificate, CategoryCourse, CategoryJob:
		return c, nil
	}
	return "", fmt.Errorf("unknown item category %q", s)
}

// Plural returns the server-side collection key, e.g. "certificates".
func (c Category) Plural() string { return string(c) + "s" }

// Title returns the capitalized category name used in notifications.
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Payload is the JSON object of a recommendation. Its shape depends on the
// category and is opaque to the synchronizer.
type Payload map[string]any

// String returns the value of key as text, or "" when absent or null.
// Numbers and booleans are formatted the way JSON wrote them.
func (p Payload) String(key string) string {
	return scalarText(p[key])
}

// Strings returns a list value of key. A single string is split on commas.
func (p Payload) Strings(key string) []string {
	switch v := p[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s := scalarText(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{scalarText(v)}
	}
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	dup := make(Payload, len(p))
	for k, v := range p {
		dup[k] = v
	}
	return dup
}

// SavedItem is a user-bookmarked recommendation held by the server.
type SavedItem struct {
	ID       string
	Category Category
	Payload  Payload
}

// serverOnlyKeys are added by the backend next to the payload fields.
var serverOnlyKeys = []string{"id", "saved_at"}

// SavedItemFromJSON splits a flat server object into id and payload.
func SavedItemFromJSON(category Category, obj map[string]any) SavedItem {
	payload := make(Payload, len(obj))
	for k, v := range obj {
		payload[k] = v
	}
	id := payload.String("id")
	for _, k := range serverOnlyKeys {
		delete(payload, k)
	}
	return SavedItem{ID: id, Category: category, Payload: payload}
}

// ItemSaver performs the server side of a save/unsave click.
type ItemSaver interface {
	SaveItem(ctx context.Context, category Category, payload Payload) (string, error)
	DeleteSavedItem(ctx context.Context, category Category, id string) error
}

// SavedItemLister fetches all saved items of one category.
type SavedItemLister interface {
	GetSavedItems(ctx context.Context, category Category) ([]SavedItem, error)
}
