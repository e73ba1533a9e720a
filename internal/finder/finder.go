// Package finder runs the form-driven flows: the three recommendation
// searches and the account forms. Every flow validates before any request
// is made.
package finder

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/careercompass/compass/internal/api"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/parse"
)

// Searcher performs the AI-backed searches.
type Searcher interface {
	FindCertificates(ctx context.Context, q api.CertificateQuery) (string, error)
	SuggestCourses(ctx context.Context, q api.CourseQuery) (string, error)
	FindCompanies(ctx context.Context, q api.CompanyQuery) (string, error)
}

// Results is the outcome of a search. ParseErr is set, and Entities empty,
// when the AI text held no readable JSON; Raw keeps that text.
type Results struct {
	Category model.Category
	Entities []model.Entity
	Raw      string
	ParseErr error
}

// Finder submits the finder forms.
type Finder struct {
	search   Searcher
	notifier model.Notifier
	logger   *slog.Logger
}

// New returns a Finder. notifier may be nil.
func New(search Searcher, notifier model.Notifier, logger *slog.Logger) *Finder {
	return &Finder{search: search, notifier: notifier, logger: logger}
}

// FindCertificates validates form, searches, and parses the certificates.
func (f *Finder) FindCertificates(ctx context.Context, form CertificateForm) (Results, error) {
	form.Interests = trimAll(form.Interests)
	form.Goals = trimAll(form.Goals)
	form.CoursePreference = strings.TrimSpace(form.CoursePreference)
	if err := Validate(form); err != nil {
		return Results{}, err
	}
	text, err := f.search.FindCertificates(ctx, api.CertificateQuery{
		Interests:        form.Interests,
		Goals:            form.Goals,
		CoursePreference: form.CoursePreference,
	})
	return f.results(model.CategoryCertificate, "Error finding certificates: ", text, err)
}

// SuggestCourses validates form, searches, and parses the courses.
func (f *Finder) SuggestCourses(ctx context.Context, form CourseForm) (Results, error) {
	form.LearningPreferences = trimAll(form.LearningPreferences)
	form.EducationalBackground = trimAll(form.EducationalBackground)
	form.CareerAspirations = trimAll(form.CareerAspirations)
	if err := Validate(form); err != nil {
		return Results{}, err
	}
	text, err := f.search.SuggestCourses(ctx, api.CourseQuery{
		LearningPreferences:   form.LearningPreferences,
		EducationalBackground: form.EducationalBackground,
		CareerAspirations:     form.CareerAspirations,
	})
	return f.results(model.CategoryCourse, "Error suggesting courses: ", text, err)
}

// FindCompanies validates form, searches, and parses the companies.
func (f *Finder) FindCompanies(ctx context.Context, form JobForm) (Results, error) {
	form.JobTitle = strings.TrimSpace(form.JobTitle)
	form.Location = strings.TrimSpace(form.Location)
	if err := Validate(form); err != nil {
		return Results{}, err
	}
	text, err := f.search.FindCompanies(ctx, api.CompanyQuery{
		JobTitle: form.JobTitle,
		Location: form.Location,
	})
	return f.results(model.CategoryJob, "Error finding companies: ", text, err)
}

func (f *Finder) results(category model.Category, prefix, text string, err error) (Results, error) {
	if err != nil {
		f.notify(model.ToastError, prefix+userMessage(err))
		return Results{}, err
	}

	res := Results{Category: category, Raw: text}
	entities, perr := parse.Entities(category, text)
	if perr != nil {
		f.logger.Warn("could not parse AI response", "category", category, "error", perr)
		res.ParseErr = perr
		return res, nil
	}
	res.Entities = entities
	f.logger.Debug("search complete", "category", category, "results", len(entities))
	return res, nil
}

func (f *Finder) notify(level model.ToastLevel, msg string) {
	if f.notifier == nil {
		return
	}
	_ = f.notifier.Notify(model.Toast{Level: level, Message: msg})
}

// userMessage extracts the user-facing part of an API error.
func userMessage(err error) string {
	var rej *model.ServerRejection
	if errors.As(err, &rej) {
		return rej.Message
	}
	var ne *model.NetworkError
	if errors.As(err, &ne) {
		return ne.Message
	}
	return err.Error()
}
