// Package parse extracts structured JSON from free-form AI text.
//
// The upstream recommendation service answers with prose that embeds one JSON
// object. Extraction is a greedy brace span: first '{' through last '}'. It is
// not depth-aware, so a string value containing an unbalanced brace in prose
// can truncate or break the span.
package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careercompass/compass/internal/model"
)

// span returns the text from the first '{' to the last '}' inclusive.
func span(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ExtractJSON returns the JSON object embedded in text. Failures are always
// *model.ParseError carrying text unchanged.
func ExtractJSON(text string) (map[string]any, error) {
	return Decode[map[string]any](text)
}

// Decode extracts the embedded JSON object and unmarshals it into T.
func Decode[T any](text string) (T, error) {
	var out T
	s, ok := span(text)
	if !ok {
		return out, &model.ParseError{Raw: text}
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		var zero T
		return zero, &model.ParseError{Raw: text, Err: fmt.Errorf("unmarshal embedded JSON: %w", err)}
	}
	return out, nil
}

// objects returns the objects listed under key. The embedded JSON must be
// well formed, but the items are taken as they are: a missing key or a value
// that is not a list yields no items, and non-object entries are skipped.
func objects(text, key string) ([]model.Payload, error) {
	top, err := Decode[map[string]json.RawMessage](text)
	if err != nil {
		return nil, err
	}
	var list []json.RawMessage
	if err := json.Unmarshal(top[key], &list); err != nil {
		return nil, nil
	}
	out := make([]model.Payload, 0, len(list))
	for _, raw := range list {
		var p model.Payload
		if err := json.Unmarshal(raw, &p); err != nil || p == nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Certificates decodes a certificate-finder response. A response without a
// "certificates" key yields an empty list.
func Certificates(text string) ([]model.Certificate, error) {
	items, err := objects(text, "certificates")
	if err != nil {
		return nil, err
	}
	out := make([]model.Certificate, 0, len(items))
	for _, p := range items {
		out = append(out, model.CertificateFrom(p))
	}
	return out, nil
}

// Courses decodes a course-suggester response.
func Courses(text string) ([]model.Course, error) {
	items, err := objects(text, "courses")
	if err != nil {
		return nil, err
	}
	out := make([]model.Course, 0, len(items))
	for _, p := range items {
		out = append(out, model.CourseFrom(p))
	}
	return out, nil
}

// Companies decodes a job-helper response.
func Companies(text string) ([]model.Company, error) {
	items, err := objects(text, "companies")
	if err != nil {
		return nil, err
	}
	out := make([]model.Company, 0, len(items))
	for _, p := range items {
		out = append(out, model.CompanyFrom(p))
	}
	return out, nil
}

// Entities decodes the response for category into renderable entities.
func Entities(category model.Category, text string) ([]model.Entity, error) {
	var out []model.Entity
	switch category {
	case model.CategoryCertificate:
		certs, err := Certificates(text)
		if err != nil {
			return nil, err
		}
		for _, c := range certs {
			out = append(out, c)
		}
	case model.CategoryCourse:
		courses, err := Courses(text)
		if err != nil {
			return nil, err
		}
		for _, c := range courses {
			out = append(out, c)
		}
	case model.CategoryJob:
		companies, err := Companies(text)
		if err != nil {
			return nil, err
		}
		for _, c := range companies {
			out = append(out, c)
		}
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return out, nil
}

// Insights interprets the ai_insights field of a recommendations response.
// It may arrive as an object or as a JSON string; a string that is not JSON
// is kept as prose in Text.
func Insights(raw json.RawMessage) (*model.Insights, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("unmarshal insights string: %w", err)
		}
		ins, err := Decode[model.Insights](text)
		if err != nil {
			return &model.Insights{Text: text}, nil
		}
		return &ins, nil
	}

	var ins model.Insights
	if err := json.Unmarshal(raw, &ins); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	return &ins, nil
}
