package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/parse"
)

const (
	pathRegister        = "/api/register"
	pathLogin           = "/api/login"
	pathFindCerts       = "/api/find-certificates"
	pathSuggestCourses  = "/api/suggest-courses"
	pathFindCompanies   = "/api/find-companies"
	pathSaveItem        = "/api/save-item"
	pathDeleteSavedItem = "/api/delete-saved-item"
	pathGetSavedItems   = "/api/get-saved-items/"
	pathRecommendations = "/api/recommendations/"
	pathSaveProfile     = "/api/save-profile"
	pathTrack           = "/api/track-interaction"
	pathCareerPaths     = "/api/career-path-prediction"
)

// RegisterRequest is the body of /api/register.
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the body of /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	envelope
	Redirect string `json:"redirect,omitempty"`
}

// Register creates an account and starts a session. It returns the redirect
// target suggested by the server.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	return c.auth(ctx, pathRegister, req, "Registration failed")
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	return c.auth(ctx, pathLogin, req, "Login failed")
}

func (c *Client) auth(ctx context.Context, path string, body any, fallback string) (string, error) {
	var resp authResponse
	if err := c.Request(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", withFallback(err, fallback)
	}
	if resp.rejected() {
		return "", withFallback(&model.ServerRejection{Path: path, Message: resp.text()}, fallback)
	}
	if resp.Redirect == "" {
		resp.Redirect = "/dashboard"
	}
	return resp.Redirect, nil
}

// CertificateQuery is the body of /api/find-certificates.
type CertificateQuery struct {
	Interests        []string `json:"interests"`
	Goals            []string `json:"goals"`
	CoursePreference string   `json:"course_preference"`
}

// CourseQuery is the body of /api/suggest-courses.
type CourseQuery struct {
	LearningPreferences   []string `json:"learning_preferences"`
	EducationalBackground []string `json:"educational_background"`
	CareerAspirations     []string `json:"career_aspirations"`
}

// CompanyQuery is the body of /api/find-companies.
type CompanyQuery struct {
	JobTitle string `json:"job_title"`
	Location string `json:"location"`
}

type searchResponse struct {
	envelope
	Data json.RawMessage `json:"data"`
}

// FindCertificates returns the raw AI text for a certificate search.
func (c *Client) FindCertificates(ctx context.Context, q CertificateQuery) (string, error) {
	return c.search(ctx, pathFindCerts, q)
}

// SuggestCourses returns the raw AI text for a course search.
func (c *Client) SuggestCourses(ctx context.Context, q CourseQuery) (string, error) {
	return c.search(ctx, pathSuggestCourses, q)
}

// FindCompanies returns the raw AI text for a company search.
func (c *Client) FindCompanies(ctx context.Context, q CompanyQuery) (string, error) {
	return c.search(ctx, pathFindCompanies, q)
}

func (c *Client) search(ctx context.Context, path string, body any) (string, error) {
	var resp searchResponse
	if err := c.Request(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", withFallback(err, "Search failed")
	}
	if resp.rejected() {
		return "", withFallback(&model.ServerRejection{Path: path, Message: resp.text()}, "Search failed")
	}
	return aiText(resp.Data), nil
}

// aiText unwraps the AI text from the search payload. The backend sends it as
// data (a string) or data.data; anything else is handed to the parser as the
// JSON text itself.
func aiText(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var nested struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &nested); err == nil && len(nested.Data) > 0 {
		return aiText(nested.Data)
	}
	return string(trimmed)
}

type saveItemRequest struct {
	Type model.Category `json:"type"`
	Data model.Payload  `json:"data"`
}

type saveItemResponse struct {
	envelope
	ItemID any `json:"item_id,omitempty"`
}

// SaveItem stores payload under category and returns the server id. The id
// is empty when the server did not return one.
func (c *Client) SaveItem(ctx context.Context, category model.Category, payload model.Payload) (string, error) {
	var resp saveItemResponse
	err := c.Request(ctx, http.MethodPost, pathSaveItem, saveItemRequest{Type: category, Data: payload}, &resp)
	if err != nil {
		return "", withFallback(err, "Failed to save item")
	}
	if resp.rejected() {
		return "", withFallback(&model.ServerRejection{Path: pathSaveItem, Message: resp.text()}, "Failed to save item")
	}
	if resp.ItemID == nil {
		return "", nil
	}
	return fmt.Sprint(resp.ItemID), nil
}

type deleteItemRequest struct {
	ID   string         `json:"id"`
	Type model.Category `json:"type"`
}

// DeleteSavedItem removes a saved item by id.
func (c *Client) DeleteSavedItem(ctx context.Context, category model.Category, id string) error {
	var resp envelope
	err := c.Request(ctx, http.MethodPost, pathDeleteSavedItem, deleteItemRequest{ID: id, Type: category}, &resp)
	if err != nil {
		return withFallback(err, "Failed to remove item")
	}
	if resp.rejected() {
		return withFallback(&model.ServerRejection{Path: pathDeleteSavedItem, Message: resp.text()}, "Failed to remove item")
	}
	return nil
}

type savedItemsResponse struct {
	envelope
	Items []map[string]any `json:"items"`
}

// GetSavedItems lists every saved item of category.
func (c *Client) GetSavedItems(ctx context.Context, category model.Category) ([]model.SavedItem, error) {
	path := pathGetSavedItems + url.PathEscape(string(category))
	var resp savedItemsResponse
	if err := c.Request(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, withFallback(err, "Failed to load saved items")
	}
	if resp.rejected() {
		return nil, withFallback(&model.ServerRejection{Path: path, Message: resp.text()}, "Failed to load saved items")
	}
	items := make([]model.SavedItem, 0, len(resp.Items))
	for _, obj := range resp.Items {
		items = append(items, model.SavedItemFromJSON(category, obj))
	}
	return items, nil
}

// Recommendations fetches profile-based recommendations of kind ("courses",
// "certificates", "jobs"). The endpoint answers either a bare list or an
// object with recommendations and optional ai_insights.
func (c *Client) Recommendations(ctx context.Context, kind string) ([]model.Recommendation, *model.Insights, error) {
	path := pathRecommendations + url.PathEscape(kind)
	var raw json.RawMessage
	if err := c.Request(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, nil, err
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []model.Recommendation
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, nil, &model.NetworkError{Path: path, Message: "unexpected recommendations shape", Err: err}
		}
		return recs, nil, nil
	}

	var resp struct {
		Recommendations []model.Recommendation `json:"recommendations"`
		AIInsights      json.RawMessage        `json:"ai_insights"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, &model.NetworkError{Path: path, Message: "unexpected recommendations shape", Err: err}
	}
	insights, err := parse.Insights(resp.AIInsights)
	if err != nil {
		c.logger.Warn("ignoring unreadable ai_insights", "kind", kind, "error", err)
		insights = nil
	}
	return resp.Recommendations, insights, nil
}

// SaveProfile updates the user's profile fields.
func (c *Client) SaveProfile(ctx context.Context, p model.Profile) error {
	var resp envelope
	if err := c.Request(ctx, http.MethodPost, pathSaveProfile, p, &resp); err != nil {
		return withFallback(err, "Failed to save profile")
	}
	if resp.rejected() {
		return withFallback(&model.ServerRejection{Path: pathSaveProfile, Message: resp.text()}, "Failed to save profile")
	}
	return nil
}

type trackRequest struct {
	ItemType        string `json:"item_type"`
	ItemID          int    `json:"item_id"`
	InteractionType string `json:"interaction_type"`
}

// TrackInteraction records a user interaction. Any 2xx answer, including an
// empty body, counts as success.
func (c *Client) TrackInteraction(ctx context.Context, itemType string, itemID int, interaction string) error {
	return c.Request(ctx, http.MethodPost, pathTrack, trackRequest{
		ItemType:        itemType,
		ItemID:          itemID,
		InteractionType: interaction,
	}, nil)
}

// CareerPathPrediction lists predicted career paths for the user.
func (c *Client) CareerPathPrediction(ctx context.Context) ([]model.CareerPath, error) {
	var paths []model.CareerPath
	if err := c.Request(ctx, http.MethodGet, pathCareerPaths, nil, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}
