package dtos

type CreateBlogRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Excerpt   string   `json:"excerpt" validate:"max=1000"`
	Image     string   `json:"image" validate:"max=2048"`
	Category  string   `json:"category" validate:"max=100"`
	Author    string   `json:"author" validate:"max=200"`
	Tags      []string `json:"tags" validate:"max=20,dive,max=50"`
	Published *bool    `json:"published"`
	Featured  bool     `json:"featured"`
}

// UpdateBlogRequest never changes the slug, so links stay stable.
type UpdateBlogRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Excerpt   *string `json:"excerpt" validate:"omitempty,max=1000"`
	Image     *string `json:"image" validate:"omitempty,max=2048"`
	Category  *string `json:"category" validate:"omitempty,max=100"`
	Published *bool   `json:"published"`
	Featured  *bool   `json:"featured"`
}

type CreateBlogResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Slug    string `json:"slug"`
}

type CreateBlogCategoryRequest struct {
	Name string `json:"name"`
}
