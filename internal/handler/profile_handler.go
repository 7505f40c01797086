package handler

import (
	"net/http"

	"blogora/internal/dto"
	"blogora/internal/service"
	"blogora/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetByUsername(c *gin.Context) {
	username := c.Param("username")

	resp, err := h.service.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Multipart uploads may carry a profile picture
	var picture *service.PictureFile
	if fileHeader, err := c.FormFile("picture"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded picture"})
			return
		}
		defer file.Close()

		picture = &service.PictureFile{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	resp, err := h.service.UpdateProfile(c.Request.Context(), userID, req, picture)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
