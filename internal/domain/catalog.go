package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category represents a browsable product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SpecEntry is a single named specification value
type SpecEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SpecList is an ordered list of specifications. Order is preserved through
// storage so "first N entries" is well defined; a plain map would not give
// that guarantee.
type SpecList []SpecEntry

// Value implements driver.Valuer, encoding the list as a JSONB array.
// Text form, not []byte, so the driver sends it as json rather than bytea.
func (s SpecList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *SpecList) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SpecList", src)
	}

	return json.Unmarshal(data, s)
}

// StringList stores a JSONB array of strings (images, pros, cons)
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}

	return json.Unmarshal(data, l)
}

// Product represents a reviewed product in the catalog
type Product struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Slug             string     `json:"slug" db:"slug"`
	Title            string     `json:"title" db:"title"`
	ShortDescription string     `json:"short_description,omitempty" db:"short_description"`
	Description      string     `json:"description,omitempty" db:"description"`
	Price            float64    `json:"price" db:"price"`
	OriginalPrice    *float64   `json:"original_price,omitempty" db:"original_price"`
	Currency         string     `json:"currency" db:"currency"`
	MainImageURL     string     `json:"main_image_url" db:"main_image_url"`
	AdditionalImages StringList `json:"additional_images,omitempty" db:"additional_images"`
	AffiliateURL     string     `json:"affiliate_url" db:"affiliate_url"`
	BrandName        string     `json:"brand_name,omitempty" db:"brand_name"`
	Rating           float64    `json:"rating" db:"rating"`
	ReviewCount      int        `json:"review_count" db:"review_count"`
	YouTubeVideoID   string     `json:"youtube_video_id,omitempty" db:"youtube_video_id"`
	Specs            SpecList   `json:"specifications,omitempty" db:"specifications"`
	Pros             StringList `json:"pros,omitempty" db:"pros"`
	Cons             StringList `json:"cons,omitempty" db:"cons"`
	InStock          bool       `json:"in_stock" db:"in_stock"`
	Featured         bool       `json:"featured" db:"featured"`
	IsPublished      bool       `json:"is_published" db:"is_published"`
	CategoryID       *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// ProductWithCategory is a product joined with its category, when it has one
type ProductWithCategory struct {
	Product
	Category *Category `json:"category,omitempty"`
}

// FAQ is a derived question/answer pair generated from a product record
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
