package render

import (
	"net/url"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/careercompass/compass/internal/model"
)

func skills(list []string) *html.Node {
	n := div("skills")
	for _, s := range list {
		n.AppendChild(span("skill-tag", s))
	}
	return n
}

func heading(s string) *html.Node { return el(atom.H3, nil, text(s)) }

// CertificateCard renders one certificate result.
func CertificateCard(c model.Certificate, ctl Control) *html.Node {
	return div("result-card",
		heading(c.Name),
		div("provider", text(c.Provider)),
		div("score", text("Relevance: "+string(c.RelevanceScore)+"%")),
		div("description", text(c.Description)),
		div("details",
			span("detail-item", "Cost: "+c.Cost),
			span("detail-item", "Duration: "+c.Duration),
		),
		skills(c.Skills),
		div("actions",
			link(c.URL, "btn btn-primary btn-small", "View Certificate"),
			SaveButton(ctl),
		),
	)
}

// CourseCard renders one course result.
func CourseCard(c model.Course, ctl Control) *html.Node {
	return div("result-card",
		heading(c.Title),
		div("provider", text(c.Provider)),
		div("score", text("Relevance: "+string(c.RelevanceScore)+"%")),
		div("description", text(c.Description)),
		div("details",
			span("detail-item", "Level: "+c.Difficulty),
			span("detail-item", "Duration: "+c.Duration),
			span("detail-item", "Price: "+c.Price),
		),
		skills(c.Skills),
		div("actions",
			link(c.URL, "btn btn-primary btn-small", "View Course"),
			SaveButton(ctl),
		),
	)
}

// CompanyCard renders one company result. The search link is a Google query
// for the company's search_query.
func CompanyCard(c model.Company, ctl Control) *html.Node {
	return div("result-card",
		heading(c.Name),
		div("provider", text(c.Industry)),
		div("description", text(c.Description)),
		div("details",
			span("detail-item", "Size: "+c.CompanySize),
			span("detail-item", "Industry: "+c.Industry),
		),
		div("why-relevant",
			el(atom.Strong, nil, text("Why relevant:")),
			text(" "+c.WhyRelevant),
		),
		div("actions",
			link(SearchURL(c.SearchQuery), "btn btn-primary btn-small", "Search Jobs"),
			SaveButton(ctl),
		),
	)
}

// SearchURL returns the Google search URL for q.
func SearchURL(q string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

// Card renders e with the card view matching its type.
func Card(e model.Entity, ctl Control) *html.Node {
	switch v := e.(type) {
	case model.Certificate:
		return CertificateCard(v, ctl)
	case model.Course:
		return CourseCard(v, ctl)
	case model.Company:
		return CompanyCard(v, ctl)
	}
	return div("result-card", heading(e.Heading()), SaveButton(ctl))
}

// Item pairs a result with its control.
type Item struct {
	Entity  model.Entity
	Control Control
}

var emptyMessages = map[model.Category]string{
	model.CategoryCertificate: "No certificates found matching your criteria. Please try different selections.",
	model.CategoryCourse:      "No courses found matching your criteria. Please try different selections.",
	model.CategoryJob:         "No companies found matching your criteria. Please try different selections.",
}

// ParseErrorMessage is shown when the AI response could not be read.
const ParseErrorMessage = "Unable to parse AI recommendations. Please try again."

// Results renders a results section for category: an error block when
// parseErr is set, an empty-results block for no items, otherwise one card
// per item.
func Results(category model.Category, items []Item, parseErr error) *html.Node {
	section := el(atom.Div, attrs("class", "results", "data-category", string(category)))
	switch {
	case parseErr != nil:
		section.AppendChild(div("error-message", para(ParseErrorMessage)))
	case len(items) == 0:
		section.AppendChild(div("empty-results", para(emptyMessages[category])))
	default:
		for _, it := range items {
			section.AppendChild(Card(it.Entity, it.Control))
		}
	}
	return section
}
