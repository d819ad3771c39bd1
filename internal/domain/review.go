package domain

// Review is the canonical record every source parser converges to,
// independent of the upstream format it came from.
type Review struct {
	ID           string   `json:"id"`
	Platform     Platform `json:"platform"`
	ProductID    string   `json:"product_id"`
	ReviewerName string   `json:"reviewer_name"`
	Text         string   `json:"text"`
	// Rating is on the platform's native scale: 0-100 for aliexpress,
	// 1-5 for the sample platforms. Consumers must not assume one scale.
	Rating       int      `json:"rating"`
	Date         string   `json:"date"`
	Country      string   `json:"country"`
	Verified     bool     `json:"verified"`
	Images       []string `json:"images"`
	Translation  *string  `json:"translation,omitempty"`
	HelpfulCount int      `json:"helpful_count"`
	Position     int      `json:"position"`

	// Assigned once after extraction, never mutated afterwards.
	QualityScore   int     `json:"quality_score"`
	AIRecommended  bool    `json:"ai_recommended"`
	SentimentScore float64 `json:"sentiment_score"`
}

// ReviewFilters are the caller-supplied predicates applied to an
// extracted set. Nil/zero fields are no-ops; all present predicates
// must hold (logical AND).
type ReviewFilters struct {
	MinRating  *int     `json:"rating,omitempty"`
	Country    string   `json:"country,omitempty"`
	WithPhotos bool     `json:"with_photos,omitempty"`
	MinQuality *float64 `json:"min_quality_score,omitempty"`
}

// Empty reports whether no predicate is set.
func (f ReviewFilters) Empty() bool {
	return f.MinRating == nil && f.Country == "" && !f.WithPhotos && f.MinQuality == nil
}

type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
	TotalPages int  `json:"total_pages"`
}

type Stats struct {
	WithPhotos     int     `json:"with_photos"`
	AIRecommended  int     `json:"ai_recommended"`
	AverageRating  float64 `json:"average_rating"`
	AverageQuality float64 `json:"average_quality"`
}

// ExtractResult is the pipeline output envelope. On total upstream
// failure Success is false, ErrorCode carries a stable machine-readable
// code, Reviews is empty and Stats is zero-valued.
type ExtractResult struct {
	Success        bool          `json:"success"`
	ErrorCode      string        `json:"error,omitempty"`
	Message        string        `json:"message,omitempty"`
	Reviews        []Review      `json:"reviews"`
	Pagination     *Pagination   `json:"pagination"`
	Stats          Stats         `json:"stats"`
	FiltersApplied ReviewFilters `json:"filters_applied"`
}
