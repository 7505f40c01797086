package dto

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}
