package model

import "time"

// ToastLevel selects the styling of a notification.
type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

// DefaultToastDuration is how long a toast stays visible unless set.
const DefaultToastDuration = 3 * time.Second

// Toast is a transient user notification.
type Toast struct {
	Level    ToastLevel
	Title    string
	Message  string
	Duration time.Duration
}

// Notifier delivers toasts to the user.
type Notifier interface {
	Notify(t Toast) error
}
