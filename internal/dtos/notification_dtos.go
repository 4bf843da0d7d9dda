package dtos

// UpdatePreferencesRequest merges onto the stored preferences.
type UpdatePreferencesRequest struct {
	Email     *bool `json:"email"`
	Push      *bool `json:"push"`
	Marketing *bool `json:"marketing"`
	Security  *bool `json:"security"`
}
