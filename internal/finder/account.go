package finder

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/careercompass/compass/internal/api"
	"github.com/careercompass/compass/internal/model"
)

// AccountClient is the account half of the API client.
type AccountClient interface {
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Login(ctx context.Context, req api.LoginRequest) (string, error)
	SaveProfile(ctx context.Context, p model.Profile) error
}

// Accounts submits the sign-up, sign-in and profile forms.
type Accounts struct {
	client   AccountClient
	notifier model.Notifier
	logger   *slog.Logger
}

// NewAccounts returns an Accounts. notifier may be nil.
func NewAccounts(client AccountClient, notifier model.Notifier, logger *slog.Logger) *Accounts {
	return &Accounts{client: client, notifier: notifier, logger: logger}
}

// Register validates form and creates the account. It returns the redirect
// target.
func (a *Accounts) Register(ctx context.Context, form RegisterForm) (string, error) {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	if err := Validate(form); err != nil {
		return "", err
	}
	redirect, err := a.client.Register(ctx, api.RegisterRequest{
		FullName:        form.FullName,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		a.notify(model.ToastError, failureText(err))
		return "", err
	}
	a.notify(model.ToastSuccess, "Registration successful!")
	return redirect, nil
}

// Login validates form and signs in.
func (a *Accounts) Login(ctx context.Context, form LoginForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := Validate(form); err != nil {
		return "", err
	}
	redirect, err := a.client.Login(ctx, api.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		a.notify(model.ToastError, failureText(err))
		return "", err
	}
	a.notify(model.ToastSuccess, "Login successful!")
	return redirect, nil
}

// SaveProfile validates form and saves the profile.
func (a *Accounts) SaveProfile(ctx context.Context, form ProfileForm) error {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	if err := Validate(form); err != nil {
		return err
	}
	err := a.client.SaveProfile(ctx, model.Profile{
		FullName:    form.FullName,
		Email:       form.Email,
		Education:   form.Education,
		Skills:      form.Skills,
		Aspirations: form.Aspirations,
	})
	if err != nil {
		a.notify(model.ToastError, failureText(err))
		return err
	}
	a.notify(model.ToastSuccess, "Profile saved successfully!")
	return nil
}

func (a *Accounts) notify(level model.ToastLevel, msg string) {
	if a.notifier == nil {
		return
	}
	_ = a.notifier.Notify(model.Toast{Level: level, Message: msg})
}

// failureText shows the server's message for a rejection and a generic one
// for anything else.
func failureText(err error) string {
	var rej *model.ServerRejection
	if errors.As(err, &rej) && rej.Message != "" {
		return rej.Message
	}
	return "An error occurred. Please try again."
}
