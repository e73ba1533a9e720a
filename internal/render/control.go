package render

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/model"
)

// Control is the render-time snapshot of a save button.
type Control struct {
	ID       string
	Category model.Category
	Payload  model.Payload
	State    button.State
	SavedID  string
}

// ControlOf snapshots b.
func ControlOf(b *button.Button) Control {
	state, id := b.State()
	return Control{
		ID:       b.Control(),
		Category: b.Category(),
		Payload:  b.Payload(),
		State:    state,
		SavedID:  id,
	}
}

// SaveButton renders the action control. Its data-action follows the state;
// it is disabled while a request is pending.
func SaveButton(c Control) *html.Node {
	item, err := json.Marshal(c.Payload)
	if err != nil || c.Payload == nil {
		item = []byte("")
	}
	classes := []string{"btn", "btn-secondary", "btn-small", "save-btn"}
	if c.State == button.StateSaved {
		classes = append(classes, "saved")
	}
	if c.State.Pending() {
		classes = append(classes, "pending")
	}

	a := attrs(
		"type", "button",
		"class", strings.Join(classes, " "),
		"data-action", c.State.Action(),
		"data-type", string(c.Category),
		"data-item", string(item),
		"data-control", c.ID,
	)
	if c.SavedID != "" {
		a = append(a, html.Attribute{Key: "data-saved-id", Val: c.SavedID})
	}
	if c.State.Pending() {
		a = append(a, html.Attribute{Key: "disabled", Val: ""})
	}
	return el(atom.Button, a, text(c.State.Label()))
}
