package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Certificate is one entry of the `certificates` list in a certificate-finder
// AI response.
type Certificate struct {
	Name           string   `json:"name"`
	Provider       string   `json:"provider"`
	RelevanceScore Flex     `json:"relevance_score"`
	Description    string   `json:"description"`
	Cost           string   `json:"cost"`
	Duration       string   `json:"duration"`
	Skills         []string `json:"skills"`
	URL            string   `json:"url"`

	Raw Payload `json:"-"`
}

// Course is one entry of the `courses` list in a course-suggester AI response.
type Course struct {
	Title          string   `json:"title"`
	Provider       string   `json:"provider"`
	RelevanceScore Flex     `json:"relevance_score"`
	Description    string   `json:"description"`
	Difficulty     string   `json:"difficulty"`
	Duration       string   `json:"duration"`
	Price          string   `json:"price"`
	Skills         []string `json:"skills"`
	URL            string   `json:"url"`

	Raw Payload `json:"-"`
}

// Company is one entry of the `companies` list in a job-helper AI response.
// Companies are saved under CategoryJob.
type Company struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	CompanySize string `json:"company_size"`
	WhyRelevant string `json:"why_relevant"`
	SearchQuery string `json:"search_query"`

	Raw Payload `json:"-"`
}

// CertificateFrom reads the display fields of a certificate object. Any JSON
// type is accepted for each field; p itself is kept as the saved payload.
func CertificateFrom(p Payload) Certificate {
	return Certificate{
		Name:           p.String("name"),
		Provider:       p.String("provider"),
		RelevanceScore: Flex(p.String("relevance_score")),
		Description:    p.String("description"),
		Cost:           p.String("cost"),
		Duration:       p.String("duration"),
		Skills:         p.Strings("skills"),
		URL:            p.String("url"),
		Raw:            p,
	}
}

// CourseFrom reads the display fields of a course object.
func CourseFrom(p Payload) Course {
	return Course{
		Title:          p.String("title"),
		Provider:       p.String("provider"),
		RelevanceScore: Flex(p.String("relevance_score")),
		Description:    p.String("description"),
		Difficulty:     p.String("difficulty"),
		Duration:       p.String("duration"),
		Price:          p.String("price"),
		Skills:         p.Strings("skills"),
		URL:            p.String("url"),
		Raw:            p,
	}
}

// CompanyFrom reads the display fields of a company object.
func CompanyFrom(p Payload) Company {
	return Company{
		Name:        p.String("name"),
		Industry:    p.String("industry"),
		Description: p.String("description"),
		CompanySize: p.String("company_size"),
		WhyRelevant: p.String("why_relevant"),
		SearchQuery: p.String("search_query"),
		Raw:         p,
	}
}

// Flex is a string field the AI output sometimes sends as a number or bool
// (relevance_score: 92 vs "92", remote: true vs "yes").
type Flex string

func (f *Flex) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = Flex(t)
	case bool:
		*f = Flex(strconv.FormatBool(t))
	case float64:
		*f = Flex(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return fmt.Errorf("unsupported JSON value %s", b)
	}
	return nil
}

// MarshalJSON keeps numeric scores numeric on the way back to the server.
func (f Flex) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseFloat(string(f), 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(f))
}

// Entity is a rendered recommendation that can be saved.
type Entity interface {
	Category() Category
	Payload() Payload
	Heading() string
}

func (Certificate) Category() Category { return CategoryCertificate }
func (Course) Category() Category      { return CategoryCourse }
func (Company) Category() Category     { return CategoryJob }

func (c Certificate) Heading() string { return c.Name }
func (c Course) Heading() string      { return c.Title }
func (c Company) Heading() string     { return c.Name }

// Payload returns the object the AI sent, unchanged. Entities built in code
// without one fall back to their own fields.
func (c Certificate) Payload() Payload { return payloadOf(c.Raw, c) }
func (c Course) Payload() Payload      { return payloadOf(c.Raw, c) }
func (c Company) Payload() Payload     { return payloadOf(c.Raw, c) }

func payloadOf(raw Payload, v any) Payload {
	if raw != nil {
		return raw.Clone()
	}
	return toPayload(v)
}

// toPayload round-trips v through JSON so the payload carries the wire names
// the server and the cache compare on.
func toPayload(v any) Payload {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	return p
}

// Recommendation is a profile-based recommendation from /api/recommendations.
type Recommendation struct {
	ID              any    `json:"id,omitempty"`
	Title           string `json:"title"`
	Provider        string `json:"provider"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	Location        string `json:"location,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	SalaryRange     string `json:"salary_range,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`
	Category        string `json:"category,omitempty"`
	Remote          Flex   `json:"remote,omitempty"`
}

// Insights is the AI commentary attached to a recommendations response.
// Text is set instead of the structured fields when the insight was prose.
type Insights struct {
	Recommendations []string `json:"recommendations"`
	Reasoning       string   `json:"reasoning"`
	SkillsGap       string   `json:"skills_gap"`
	CareerAdvice    string   `json:"career_advice"`
	Text            string   `json:"-"`
}

// CareerPath is one entry of /api/career-path-prediction.
type CareerPath struct {
	Name           string `json:"name"`
	AverageSalary  string `json:"average_salary"`
	GrowthRate     string `json:"growth_rate"`
	Industry       string `json:"industry"`
	Description    string `json:"description"`
	RequiredSkills string `json:"required_skills"`
}

// Profile is the editable part of the user profile.
type Profile struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Education   string `json:"education"`
	Skills      string `json:"skills"`
	Aspirations string `json:"aspirations"`
}
