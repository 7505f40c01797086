package dto

type RatePostRequest struct {
	Value int `json:"value" binding:"required,min=1,max=5"`
}

type RatingSummary struct {
	AverageRating *float64 `json:"average_rating"` // null when unrated
	Count         int64    `json:"count"`
}

type LikeSummary struct {
	LikeCount int64 `json:"like_count"`
	Liked     bool  `json:"liked"`
}
