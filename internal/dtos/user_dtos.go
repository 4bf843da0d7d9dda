package dtos

// SyncUserRequest completes the profile of the token holder. Phone is
// mandatory the first time an account is seen.
type SyncUserRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name" validate:"max=200"`
}

type SyncUserResponse struct {
	Message string `json:"message"`
	User    any    `json:"user"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin superadmin"`
}

type AddFavoriteRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
}
