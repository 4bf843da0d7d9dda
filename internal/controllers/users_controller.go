package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type UsersController struct {
	userService     services.UserService
	favoriteService services.FavoriteService
}

func NewUsersController(us services.UserService, fs services.FavoriteService) *UsersController {
	return &UsersController{userService: us, favoriteService: fs}
}

// POST /api/users/sync
func (c *UsersController) SyncUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.SyncUserRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}
	u, err := c.userService.SyncUser(r.Context(), id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SyncUserResponse{Message: "User synced successfully", User: u})
}

// GET /api/users/me
func (c *UsersController) MeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	u, err := c.userService.GetUser(r.Context(), id.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// GET /api/admin/users
func (c *UsersController) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := c.userService.ListUsers(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, users)
}

// PATCH /api/admin/users/{user_id}/role
func (c *UsersController) UpdateRoleHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	role, _ := middleware.ParseRole(req.Role)
	if err := c.userService.UpdateRole(r.Context(), admin, mux.Vars(r)["user_id"], role); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Role updated successfully"})
}

// ----------------------------------------------------------------------
// Favorites
// ----------------------------------------------------------------------

// POST /api/users/{user_id}/favorites
func (c *UsersController) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !middleware.RequireSelfOrAdmin(w, r, userID) {
		return
	}
	var req dtos.AddFavoriteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := c.favoriteService.AddFavorite(r.Context(), userID, req.PropertyID); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.MessageResponse{Message: "Added to favorites"})
}

// GET /api/users/{user_id}/favorites
func (c *UsersController) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !middleware.RequireSelfOrAdmin(w, r, userID) {
		return
	}
	props, err := c.favoriteService.ListFavorites(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, props)
}

// DELETE /api/users/{user_id}/favorites/{property_id}
func (c *UsersController) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !middleware.RequireSelfOrAdmin(w, r, vars["user_id"]) {
		return
	}
	if err := c.favoriteService.RemoveFavorite(r.Context(), vars["user_id"], vars["property_id"]); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Removed from favorites"})
}
