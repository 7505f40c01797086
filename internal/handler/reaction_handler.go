package handler

import (
	"net/http"

	"blogora/internal/dto"
	"blogora/internal/service"
	"blogora/pkg/response"
	"blogora/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReactionHandler struct {
	ratingService service.RatingService
	likeService   service.LikeService
}

func NewReactionHandler(ratingService service.RatingService, likeService service.LikeService) *ReactionHandler {
	return &ReactionHandler{
		ratingService: ratingService,
		likeService:   likeService,
	}
}

func (h *ReactionHandler) RatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req dto.RatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.ratingService.RatePost(c.Request.Context(), userID, postID, req.Value); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post rated successfully"})
}

func (h *ReactionHandler) GetRating(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	summary, err := h.ratingService.GetSummary(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReactionHandler) LikePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	if err := h.likeService.LikePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "post liked successfully"})
}

func (h *ReactionHandler) UnlikePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	if err := h.likeService.UnlikePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post unliked successfully"})
}

func (h *ReactionHandler) GetLikes(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	summary, err := h.likeService.GetSummary(c.Request.Context(), postID, response.OptionalUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
