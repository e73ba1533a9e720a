package render

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/careercompass/compass/internal/model"
)

// SavedItemRow renders one saved item on the dashboard with its control.
func SavedItemRow(it model.SavedItem, ctl Control) *html.Node {
	p := it.Payload
	var title, sub, href, label string
	switch it.Category {
	case model.CategoryCertificate:
		title, sub, href, label = p.String("name"), p.String("provider")+" - "+p.String("cost"), p.String("url"), "View"
	case model.CategoryCourse:
		title, sub, href, label = p.String("title"), p.String("provider")+" - "+p.String("price"), p.String("url"), "View"
	default:
		title, sub, href, label = p.String("name"), p.String("industry")+" - "+p.String("company_size"), SearchURL(p.String("search_query")), "Search"
	}
	return el(atom.Div, attrs("class", "saved-item", "data-id", it.ID),
		el(atom.H4, nil, text(title)),
		para(sub),
		div("actions",
			link(href, "btn btn-primary btn-small", label),
			SaveButton(ctl),
		),
	)
}

var emptySavedLinks = map[model.Category][2]string{
	model.CategoryCertificate: {"/certificate-finder", "Find some certificates"},
	model.CategoryCourse:      {"/course-suggester", "Get course suggestions"},
	model.CategoryJob:         {"/job-helper", "Find companies"},
}

// SavedItems renders the saved-items section of category.
func SavedItems(category model.Category, rows []*html.Node) *html.Node {
	section := el(atom.Div, attrs("class", "saved-items", "data-category", string(category)))
	if len(rows) == 0 {
		l := emptySavedLinks[category]
		section.AppendChild(el(atom.P, class("empty-state"),
			text("No saved items yet. "),
			el(atom.A, attrs("href", l[0]), text(l[1])),
		))
		return section
	}
	for _, r := range rows {
		section.AppendChild(r)
	}
	return section
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RecommendationCard renders a profile-based recommendation. The filter
// attributes mirror the recommendation's fields.
func RecommendationCard(r model.Recommendation) *html.Node {
	card := el(atom.Div, attrs(
		"class", "recommendation-card",
		"data-difficulty", r.Difficulty,
		"data-category", r.Category,
		"data-experience", r.ExperienceLevel,
		"data-remote", string(r.Remote),
	),
		div("card-header",
			heading(r.Title),
			span("provider", r.Provider),
		),
	)
	content := div("card-content", para(r.Description))
	if r.ExperienceLevel != "" || r.Location != "" || r.SalaryRange != "" {
		content.AppendChild(div("job-meta",
			span("location", orDefault(r.Location, "Remote")),
			span("experience", orDefault(r.ExperienceLevel, "All levels")),
			span("salary", orDefault(r.SalaryRange, "Competitive")),
		))
	}
	card.AppendChild(content)
	if r.URL != "" {
		card.AppendChild(div("card-actions", link(r.URL, "btn btn-primary", "Learn More")))
	}
	return card
}

// InsightsPanel renders AI insights, or nothing when ins is nil.
func InsightsPanel(ins *model.Insights) *html.Node {
	if ins == nil {
		return nil
	}
	panel := div("ai-insights", el(atom.H3, nil, text("AI Insights")))
	if ins.Text != "" {
		panel.AppendChild(para(ins.Text))
		return panel
	}
	if len(ins.Recommendations) > 0 {
		list := el(atom.Ul, nil)
		for _, r := range ins.Recommendations {
			list.AppendChild(el(atom.Li, nil, text(r)))
		}
		panel.AppendChild(list)
	}
	for _, part := range []struct{ label, body string }{
		{"Reasoning", ins.Reasoning},
		{"Skills gap", ins.SkillsGap},
		{"Career advice", ins.CareerAdvice},
	} {
		if part.body == "" {
			continue
		}
		panel.AppendChild(el(atom.P, nil, el(atom.Strong, nil, text(part.label+": ")), text(part.body)))
	}
	return panel
}

// CareerPathModal renders the career-path prediction dialog.
func CareerPathModal(paths []model.CareerPath) *html.Node {
	body := div("modal-body")
	if len(paths) == 0 {
		body.AppendChild(para("No career path predictions available yet. Complete your profile to get started."))
	}
	for _, p := range paths {
		body.AppendChild(div("career-path",
			el(atom.H4, nil, text(p.Name)),
			para(p.Description),
			div("details",
				span("detail-item", "Salary: "+p.AverageSalary),
				span("detail-item", "Growth: "+p.GrowthRate),
				span("detail-item", "Industry: "+p.Industry),
			),
			div("skills", span("skill-tag", p.RequiredSkills)),
		))
	}
	return el(atom.Div, attrs("class", "modal", "id", "careerPathModal"),
		div("modal-content",
			el(atom.H2, nil, text("Career Path Predictions")),
			body,
		),
	)
}

// Toast renders a notification.
func Toast(t model.Toast) *html.Node {
	level := t.Level
	if level == "" {
		level = model.ToastInfo
	}
	content := div("notification-content")
	if t.Title != "" {
		content.AppendChild(el(atom.Strong, nil, text(t.Title)))
	}
	content.AppendChild(el(atom.Span, nil, text(t.Message)))
	return el(atom.Div, attrs("class", "notification notification-"+string(level), "role", "status"), content)
}

// Page wraps body in a minimal HTML document with a notification area and
// the delegated click and submit listeners.
func Page(title string, body ...*html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	b := el(atom.Body, nil, body...)
	b.AppendChild(el(atom.Div, attrs("id", "notifications")))
	b.AppendChild(el(atom.Script, nil, text(pageScript)))
	doc.AppendChild(el(atom.Html, attrs("lang", "en"),
		el(atom.Head, nil,
			el(atom.Meta, attrs("charset", "utf-8")),
			el(atom.Title, nil, text(title)),
		),
		b,
	))
	return doc
}

// ValidationErrors renders one line per failed form field.
func ValidationErrors(ve *model.ValidationError) *html.Node {
	list := el(atom.Ul, class("form-errors"))
	for _, f := range ve.Fields {
		list.AppendChild(el(atom.Li, attrs("class", "error-message", "data-field", f.Field), text(f.Message)))
	}
	return list
}

type formField struct {
	name, label, placeholder string
}

var finderForms = []struct {
	category model.Category
	action   string
	title    string
	fields   []formField
}{
	{model.CategoryCertificate, "/find/certificates", "Find certificates", []formField{
		{"interests", "Interests", "cloud, data"},
		{"goals", "Goals", "career change"},
		{"course_preference", "Course preference", "online"},
	}},
	{model.CategoryCourse, "/find/courses", "Suggest courses", []formField{
		{"learning_preferences", "Learning preferences", "video, hands-on"},
		{"educational_background", "Educational background", "bachelor"},
		{"career_aspirations", "Career aspirations", "data engineer"},
	}},
	{model.CategoryJob, "/find/companies", "Find companies", []formField{
		{"job_title", "Job title", "backend engineer"},
		{"location", "Location", "remote"},
	}},
}

// FinderForms renders the three search forms, each followed by the
// container its results replace. List fields take comma separated values.
func FinderForms() []*html.Node {
	var out []*html.Node
	for _, f := range finderForms {
		target := "results-" + string(f.category)
		form := el(atom.Form, attrs("class", "finder-form", "method", "post", "action", f.action, "data-find", f.action, "data-target", target),
			el(atom.H3, nil, text(f.title)),
		)
		for _, fld := range f.fields {
			form.AppendChild(el(atom.Label, nil,
				text(fld.label+" "),
				el(atom.Input, attrs("type", "text", "name", fld.name, "placeholder", fld.placeholder)),
			))
		}
		form.AppendChild(el(atom.Button, attrs("type", "submit", "class", "btn btn-primary"), text("Search")))
		out = append(out, form, el(atom.Div, attrs("id", target, "class", "results-container")))
	}
	return out
}

// pageScript is the page's one delegated listener pair. Clicks on any
// element carrying data-action and data-control are posted to /actions with
// all of its data-* attributes, and the returned control replaces it.
// Finder forms post to their data-find endpoint and fill data-target.
const pageScript = `(function () {
  function post(url, body) {
    return fetch(url, {method: "POST", body: body}).then(function (r) {
      return r.text().then(function (markup) { return {ok: r.ok, status: r.status, markup: markup}; });
    });
  }
  function fragment(markup) {
    var t = document.createElement("template");
    t.innerHTML = markup;
    return t.content;
  }
  function toasts(frag) {
    var box = document.getElementById("notifications");
    frag.querySelectorAll(".notification").forEach(function (n) {
      box.appendChild(n);
      setTimeout(function () { n.remove(); }, 3000);
    });
  }
  document.addEventListener("click", function (ev) {
    var btn = ev.target.closest("[data-action][data-control]");
    if (!btn || btn.disabled) { return; }
    ev.preventDefault();
    var body = new URLSearchParams();
    Array.prototype.forEach.call(btn.attributes, function (a) {
      if (a.name.indexOf("data-") === 0) { body.append(a.name, a.value); }
    });
    btn.disabled = true;
    post("/actions", body).then(function (res) {
      var frag = fragment(res.markup);
      toasts(frag);
      var next = frag.querySelector("[data-control]");
      if (res.ok && next) { btn.replaceWith(next); } else { btn.disabled = false; }
    }, function () { btn.disabled = false; });
  });
  document.addEventListener("submit", function (ev) {
    var form = ev.target.closest("form[data-find]");
    if (!form) { return; }
    ev.preventDefault();
    post(form.getAttribute("data-find"), new URLSearchParams(new FormData(form))).then(function (res) {
      var frag = fragment(res.markup);
      toasts(frag);
      document.getElementById(form.getAttribute("data-target")).replaceChildren(frag);
    });
  });
})();`
