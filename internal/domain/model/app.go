package model

import "strings"

// AppType identifies the category of an application credential. The field is
// open-ended: any string round-trips through the store unchanged.
type AppType string

// AppTypeDify is the only application type recognized by the UI today.
const AppTypeDify AppType = "dify"

// App holds one application credential entry. ID is assigned by the store on
// create and never changes afterwards.
type App struct {
	ID   string
	Type AppType
	Name string // display name shown to users
	Key  string // opaque secret, may be empty
}

// Validate reports a *ValidationError when a required field is missing.
// Key is intentionally unchecked.
func (a App) Validate() error {
	if strings.TrimSpace(string(a.Type)) == "" {
		return &ValidationError{Field: "type", Reason: "is required"}
	}
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "appName", Reason: "is required"}
	}
	return nil
}

// Normalized returns a copy with surrounding whitespace removed from ID,
// Type, and Name.
func (a App) Normalized() App {
	a.ID = strings.TrimSpace(a.ID)
	a.Type = AppType(strings.TrimSpace(string(a.Type)))
	a.Name = strings.TrimSpace(a.Name)
	return a
}
