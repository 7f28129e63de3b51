package models

import "time"

// Resource categories
const (
	ResourceCategoryArticle = "Article"
	ResourceCategoryVideo   = "Video"
	ResourceCategoryCourse  = "Course"
	ResourceCategoryTool    = "Tool"
)

// ValidResourceCategory reports whether c is an accepted category.
func ValidResourceCategory(c string) bool {
	switch c {
	case ResourceCategoryArticle, ResourceCategoryVideo, ResourceCategoryCourse, ResourceCategoryTool:
		return true
	}
	return false
}

// Resource is an assistant-curated external link tied to the user's goals.
// RelevanceScore decays over time (see jobs/resource_decay.go) so stale
// links sink on the dashboard.
type Resource struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"userId" json:"user_id"`
	Title          string    `bson:"title" json:"title"`
	URL            string    `bson:"url" json:"url"`
	Description    string    `bson:"description,omitempty" json:"description,omitempty"`
	Category       string    `bson:"category" json:"category"`
	RelevanceScore int       `bson:"relevanceScore" json:"relevance_score"` // 0-100
	CreatedAt      time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updated_at"`
}

// ResourcePatch is a partial update; only non-nil fields are applied.
type ResourcePatch struct {
	Title          *string `json:"title,omitempty"`
	URL            *string `json:"url,omitempty"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
	RelevanceScore *int    `json:"relevance_score,omitempty"`
}

// ResourceCandidate is an un-persisted search hit returned by
// search_web_resources; the assistant decides which candidates to save
// via create_resource.
type ResourceCandidate struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Description    string `json:"description,omitempty"`
	Category       string `json:"category"`
	RelevanceScore int    `json:"relevance_score"`
}
