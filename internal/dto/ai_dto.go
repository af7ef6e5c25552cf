package dto

// RecommendRequest AI推荐请求
type RecommendRequest struct {
	Input   string `json:"input" binding:"required"`
	Context string `json:"context"`
}

// RecommendResponse AI推荐响应
type RecommendResponse struct {
	Recommendations string `json:"recommendations"`
}
