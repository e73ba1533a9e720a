package parse

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/careercompass/compass/internal/model"
)

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	got, err := ExtractJSON(`Here you go: {"a":1} thanks`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractJSON_SameAsParsingSubstring(t *testing.T) {
	inner := `{"certificates":[{"name":"AWS SA","provider":"Amazon","skills":["cloud"]}],"note":{"x":[1,2]}}`
	prefixes := []string{"", "Sure! ", "```json\n", "Result:\n\n"}
	suffixes := []string{"", " Let me know.", "\n```", "\n\nGood luck"}

	var direct map[string]any
	if err := json.Unmarshal([]byte(inner), &direct); err != nil {
		t.Fatal(err)
	}

	for _, p := range prefixes {
		for _, s := range suffixes {
			got, err := ExtractJSON(p + inner + s)
			if err != nil {
				t.Fatalf("ExtractJSON(%q...%q): %v", p, s, err)
			}
			if !reflect.DeepEqual(got, direct) {
				t.Errorf("ExtractJSON(%q...%q) = %v, want %v", p, s, got, direct)
			}
		}
	}
}

func TestExtractJSON_NoBraces_ReturnsRawUnchanged(t *testing.T) {
	inputs := []string{"", "no json here", "just ] brackets [ and } closers", "   \n\t"}
	for _, in := range inputs {
		_, err := ExtractJSON(in)
		var pe *model.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ExtractJSON(%q): expected ParseError, got %v", in, err)
		}
		if pe.Raw != in {
			t.Errorf("Raw = %q, want %q", pe.Raw, in)
		}
	}
}

func TestExtractJSON_MalformedSpan(t *testing.T) {
	in := `prefix {"a": 1,, } suffix`
	_, err := ExtractJSON(in)
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Raw != in {
		t.Errorf("Raw = %q, want original text", pe.Raw)
	}
	if pe.Err == nil {
		t.Error("expected wrapped decode error")
	}
}

func TestExtractJSON_GreedySpanAcrossTwoObjects(t *testing.T) {
	// Two separate objects make the greedy span invalid JSON.
	_, err := ExtractJSON(`{"a":1} and also {"b":2}`)
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for greedy span, got %v", err)
	}
}

func TestCertificates_Typed(t *testing.T) {
	text := `Based on your interests: {"certificates":[{"name":"Google Data Analytics","provider":"Coursera","relevance_score":92,"description":"d","cost":"$49/mo","duration":"6 months","skills":["SQL","R"],"url":"https://example.com/gda"}]} hope this helps`
	certs, err := Certificates(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(certs) != 1 {
		t.Fatalf("len = %d, want 1", len(certs))
	}
	c := certs[0]
	if c.Name != "Google Data Analytics" || c.Provider != "Coursera" {
		t.Errorf("cert = %+v", c)
	}
	if c.RelevanceScore != "92" {
		t.Errorf("RelevanceScore = %q, want 92", c.RelevanceScore)
	}
	if len(c.Skills) != 2 {
		t.Errorf("Skills = %v", c.Skills)
	}
}

func TestCertificates_LooseFieldTypes(t *testing.T) {
	text := `Here: {"certificates":[{"name":"AWS SA","provider":"AWS","cost":0,"duration":6,"skills":"cloud, networking","relevance_score":"88"},"stray",{"name":"CKA","provider":"CNCF","skills":[1,"k8s"]}]} thanks`
	certs, err := Certificates(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("len = %d, want 2", len(certs))
	}
	c := certs[0]
	if c.Cost != "0" || c.Duration != "6" || c.RelevanceScore != "88" {
		t.Errorf("cert = %+v", c)
	}
	if len(c.Skills) != 2 || c.Skills[0] != "cloud" || c.Skills[1] != "networking" {
		t.Errorf("Skills = %q", c.Skills)
	}
	if got := certs[1].Skills; len(got) != 2 || got[0] != "1" {
		t.Errorf("Skills = %q", got)
	}
}

func TestCertificates_PayloadIsTheSentObject(t *testing.T) {
	text := `{"certificates":[{"name":"AWS SA","provider":"AWS","cost":"$300","rating":4.8,"relevance_score":"92"}]}`
	certs, err := Certificates(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := certs[0].Payload()
	if len(p) != 5 {
		t.Errorf("payload = %v, want the 5 fields sent", p)
	}
	if p["rating"] != 4.8 {
		t.Errorf("rating = %v, want 4.8", p["rating"])
	}
	if score, ok := p["relevance_score"].(string); !ok || score != "92" {
		t.Errorf("relevance_score = %#v, want string 92", p["relevance_score"])
	}
	if _, ok := p["url"]; ok {
		t.Error("payload gained a url field")
	}

	// Mutating the returned payload leaves the entity untouched.
	p["name"] = "changed"
	if certs[0].Payload().String("name") != "AWS SA" {
		t.Error("Payload returned a shared map")
	}
}

func TestCertificates_NotAListIsEmpty(t *testing.T) {
	certs, err := Certificates(`{"certificates":{"name":"x"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(certs) != 0 {
		t.Errorf("len = %d, want 0", len(certs))
	}
}

func TestCourses_MalformedIsParseError(t *testing.T) {
	_, err := Courses(`{"courses":[{"title":"Go",}]}`)
	var pe *model.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestCourses_MissingKeyIsEmpty(t *testing.T) {
	courses, err := Courses(`{"other":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(courses) != 0 {
		t.Errorf("len = %d, want 0", len(courses))
	}
}

func TestEntities_Companies(t *testing.T) {
	text := `{"companies":[{"name":"Acme","industry":"Robotics","search_query":"acme robotics jobs"},{"name":"Globex","industry":"Energy"}]}`
	ents, err := Entities(model.CategoryJob, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ents) != 2 {
		t.Fatalf("len = %d, want 2", len(ents))
	}
	if ents[0].Category() != model.CategoryJob || ents[0].Heading() != "Acme" {
		t.Errorf("ents[0] = %+v", ents[0])
	}
}

func TestInsights_Variants(t *testing.T) {
	obj, err := Insights(json.RawMessage(`{"reasoning":"because","recommendations":["a","b"]}`))
	if err != nil || obj == nil || obj.Reasoning != "because" || len(obj.Recommendations) != 2 {
		t.Fatalf("object insights = %+v, %v", obj, err)
	}

	str, err := Insights(json.RawMessage(`"{\"career_advice\":\"keep going\"}"`))
	if err != nil || str == nil || str.CareerAdvice != "keep going" {
		t.Fatalf("string insights = %+v, %v", str, err)
	}

	prose, err := Insights(json.RawMessage(`"Focus on cloud skills."`))
	if err != nil || prose == nil || prose.Text != "Focus on cloud skills." {
		t.Fatalf("prose insights = %+v, %v", prose, err)
	}

	none, err := Insights(json.RawMessage(`null`))
	if err != nil || none != nil {
		t.Fatalf("null insights = %+v, %v", none, err)
	}
}
