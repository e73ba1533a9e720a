package filter

import (
	"strings"

	"github.com/careercompass/compass/internal/model"
)

// RecommendationFilter narrows profile-based recommendations. Courses are
// filtered by difficulty and category, jobs by experience level and remote.
// Matching is case-insensitive equality. Empty criteria are treated as
// "match all".
type RecommendationFilter struct {
	Difficulty string
	Category   string
	Experience string
	Remote     string
}

// Match returns true if rec satisfies every non-empty criterion.
func (f RecommendationFilter) Match(rec model.Recommendation) bool {
	return matches(f.Difficulty, rec.Difficulty) &&
		matches(f.Category, rec.Category) &&
		matches(f.Experience, rec.ExperienceLevel) &&
		matches(f.Remote, string(rec.Remote))
}

// Apply returns the recommendations that match, preserving order.
func (f RecommendationFilter) Apply(recs []model.Recommendation) []model.Recommendation {
	out := make([]model.Recommendation, 0, len(recs))
	for _, r := range recs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// IsZero reports whether the filter has no criteria.
func (f RecommendationFilter) IsZero() bool {
	return f == RecommendationFilter{}
}

func matches(want, got string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	return strings.EqualFold(want, strings.TrimSpace(got))
}
