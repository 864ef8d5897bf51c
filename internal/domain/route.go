package domain

import (
	"regexp"
	"strings"
	"time"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugInvalidRune = regexp.MustCompile(`[^a-z0-9]+`)
)

// Route - именованный набор точек доставки с уникальным slug
type Route struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// RoutePatch - частичное обновление маршрута
type RoutePatch struct {
	Name        *string
	Slug        *string
	Description *string
}

// IsEmpty возвращает true, если ни одно поле не задано
func (p RoutePatch) IsEmpty() bool {
	return p.Name == nil && p.Slug == nil && p.Description == nil
}

// IsValidSlug проверяет, что slug безопасен для URL
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Slugify строит slug из имени маршрута: "KL 7" -> "kl-7"
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalidRune.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
