package models

// Settings documents are free-form maps keyed by section name.
type Settings map[string]any

// PublicSettingsSections are readable without authentication.
var PublicSettingsSections = []string{"general", "contact", "social", "seo"}
