package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LegacyProduct is the flat camelCase shape used by the old mock-data feed.
// It only exists at the import boundary; nothing past FromLegacy should ever
// see it.
type LegacyProduct struct {
	ID             string            `json:"id"`
	Slug           string            `json:"slug"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	OriginalPrice  *float64          `json:"originalPrice"`
	Image          string            `json:"image"`
	Images         []string          `json:"images"`
	AmazonLink     string            `json:"amazonLink"`
	Brand          string            `json:"brand"`
	Rating         float64           `json:"rating"`
	Reviews        int               `json:"reviews"`
	YouTubeVideoID string            `json:"youtubeVideoId"`
	Specs          map[string]string `json:"specs"`
	Pros           []string          `json:"pros"`
	Cons           []string          `json:"cons"`
	InStock        bool              `json:"inStock"`
	Featured       bool              `json:"featured"`
	Category       string            `json:"category"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// FromLegacy converts a legacy mock-shape record into the canonical Product.
// Spec map keys are sorted before conversion so the resulting order is
// deterministic. Legacy records carry no publication flag; they were all
// public, so IsPublished is set.
func FromLegacy(lp LegacyProduct) Product {
	id, err := uuid.Parse(lp.ID)
	if err != nil {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(lp.ID))
	}

	specs := make(SpecList, 0, len(lp.Specs))
	keys := make([]string, 0, len(lp.Specs))
	for k := range lp.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		specs = append(specs, SpecEntry{Name: k, Value: lp.Specs[k]})
	}

	return Product{
		ID:               id,
		Slug:             lp.Slug,
		Title:            lp.Name,
		Description:      lp.Description,
		Price:            lp.Price,
		OriginalPrice:    lp.OriginalPrice,
		Currency:         "INR",
		MainImageURL:     lp.Image,
		AdditionalImages: lp.Images,
		AffiliateURL:     lp.AmazonLink,
		BrandName:        lp.Brand,
		Rating:           lp.Rating,
		ReviewCount:      lp.Reviews,
		YouTubeVideoID:   lp.YouTubeVideoID,
		Specs:            specs,
		Pros:             lp.Pros,
		Cons:             lp.Cons,
		InStock:          lp.InStock,
		Featured:         lp.Featured,
		IsPublished:      true,
		CreatedAt:        lp.CreatedAt,
		UpdatedAt:        lp.CreatedAt,
	}
}
