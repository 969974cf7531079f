package domain

import (
	"regexp"
	"slices"
	"time"
)

// PredefinedCategories exist implicitly for every user and cannot be
// deleted or redefined.
var PredefinedCategories = []string{"ideas", "projects", "learning", "resources"}

// categoryNameRE constrains custom category names to url-safe slugs.
var categoryNameRE = regexp.MustCompile(`^[a-z0-9-]{1,50}$`)

// IsPredefinedCategory reports whether name is one of the built-in
// categories.
func IsPredefinedCategory(name string) bool {
	return slices.Contains(PredefinedCategories, name)
}

// ValidCategoryName reports whether name is a legal custom category slug.
func ValidCategoryName(name string) bool {
	return categoryNameRE.MatchString(name)
}

// Category is a per-user custom taxonomy entry.
type Category struct {
	ID          string
	UserID      string
	Name        string
	DisplayName string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
