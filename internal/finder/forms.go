package finder

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/careercompass/compass/internal/model"
)

// CertificateForm is the certificate-finder form. Interests and goals are
// checkbox groups; course preference is a radio group.
type CertificateForm struct {
	Interests        []string `json:"interests" validate:"min=1,dive,required"`
	Goals            []string `json:"goals" validate:"min=1,dive,required"`
	CoursePreference string   `json:"course_preference" validate:"required"`
}

// CourseForm is the course-suggester form.
type CourseForm struct {
	LearningPreferences   []string `json:"learning_preferences" validate:"min=1,dive,required"`
	EducationalBackground []string `json:"educational_background" validate:"min=1,dive,required"`
	CareerAspirations     []string `json:"career_aspirations" validate:"min=1,dive,required"`
}

// JobForm is the job-helper form.
type JobForm struct {
	JobTitle string `json:"job_title" validate:"required"`
	Location string `json:"location"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	FullName        string `json:"fullName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileForm is the profile editor.
type ProfileForm struct {
	FullName    string `json:"fullName" validate:"omitempty,min=2"`
	Email       string `json:"email" validate:"omitempty,email"`
	Education   string `json:"education"`
	Skills      string `json:"skills"`
	Aspirations string `json:"aspirations"`
}

// messages maps "field.tag" to the text shown under the field.
var messages = map[string]string{
	"fullName.required":        "Please enter your full name",
	"fullName.min":             "Please enter your full name",
	"email.required":           "Please enter your email address",
	"email.email":              "Please enter a valid email address",
	"password.required":        "Please enter a password",
	"password.min":             "Password must be at least 6 characters long",
	"confirmPassword.required": "Please confirm your password",
	"confirmPassword.eqfield":  "Passwords do not match",
	"job_title.required":       "Please enter a job title",
}

var tagMessages = map[string]string{
	"min":      "Please select at least one option",
	"required": "Please choose an option",
	"email":    "Please enter a valid email address",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks form and returns a *model.ValidationError listing every
// failing field, or nil.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &model.ValidationError{}
	seen := make(map[string]bool)
	for _, fe := range verrs {
		field := fe.Field()
		// dive errors name the element, e.g. interests[0]; report the group.
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Fields = append(out.Fields, model.FieldError{Field: field, Message: messageFor(field, fe.Tag())})
	}
	return out
}

func messageFor(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	if m, ok := tagMessages[tag]; ok {
		return m
	}
	return "Invalid value"
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
