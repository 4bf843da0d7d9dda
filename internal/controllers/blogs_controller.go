package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type BlogsController struct {
	blogService services.BlogService
}

func NewBlogsController(s services.BlogService) *BlogsController {
	return &BlogsController{blogService: s}
}

// GET /api/blogs
func (c *BlogsController) ListBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultBlogPageSize)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	blogs, err := c.blogService.ListPublished(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, blogs)
}

// GET /api/blogs/{slug}
func (c *BlogsController) GetBlogHandler(w http.ResponseWriter, r *http.Request) {
	b, err := c.blogService.ViewBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, b)
}

// GET /api/blog-categories
func (c *BlogsController) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := c.blogService.ListCategories(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cats)
}

// GET /api/admin/blogs
func (c *BlogsController) AdminListBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := c.blogService.ListAll(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, blogs)
}

// POST /api/admin/blogs
func (c *BlogsController) CreateBlogHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateBlogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	b, err := c.blogService.CreateBlog(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreateBlogResponse{
		Message: "Blog created successfully",
		ID:      b.ID,
		Slug:    b.Slug,
	})
}

// PUT /api/admin/blogs/{id}
func (c *BlogsController) UpdateBlogHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateBlogRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := c.blogService.UpdateBlog(r.Context(), mux.Vars(r)["id"], req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Blog updated successfully"})
}

// DELETE /api/admin/blogs/{id}
func (c *BlogsController) DeleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.blogService.DeleteBlog(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Blog deleted successfully"})
}

// POST /api/admin/blog-categories
func (c *BlogsController) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateBlogCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.blogService.CreateCategory(r.Context(), req.Name)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreatedResponse{Message: "Category created", ID: cat.ID})
}
