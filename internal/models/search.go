package models

import "time"

// SearchRequest carries the filter set for a listings search.
// Zero values mean "not filtered"; pointers distinguish absent numeric bounds.
type SearchRequest struct {
	Query        string   `json:"query" form:"query"`
	City         string   `json:"city" form:"city"`
	PropertyType string   `json:"property_type" form:"propertyType"`
	ListingType  string   `json:"listing_type" form:"listingType"`
	MinPrice     *float64 `json:"min_price" form:"minPrice"`
	MaxPrice     *float64 `json:"max_price" form:"maxPrice"`
	Bedrooms     *int     `json:"bedrooms" form:"bedrooms"`
	MinArea      *int     `json:"min_area" form:"minArea"`
	MaxArea      *int     `json:"max_area" form:"maxArea"`
	Latitude     *float64 `json:"latitude" form:"latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude"`
	RadiusKm     *float64 `json:"radius_km" form:"radiusKm"`
	SortBy       string   `json:"sort_by" form:"sortBy"`
	Page         int      `json:"page" form:"page"`
	Size         int      `json:"size" form:"size"`
}

// SearchResult is the per-request projection of a remote listing plus the
// locally computed distance and relevance score. It is owned by the request
// that produced it and discarded after the response is sent.
type SearchResult struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Location       string    `json:"location"`
	City           string    `json:"city"`
	PropertyType   string    `json:"property_type"`
	ListingType    string    `json:"listing_type"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	AreaSqft       float64   `json:"area_sqft"`
	IsFeatured     bool      `json:"is_featured"`
	IsVerified     bool      `json:"is_verified"`
	ViewsCount     int64     `json:"views_count"`
	FavoritesCount int64     `json:"favorites_count"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedAt      time.Time `json:"created_at"`
	DistanceKm     *float64  `json:"distance_km,omitempty"`
	RelevanceScore float64   `json:"relevance_score"`
}

// SearchPage is the paged envelope returned to callers of the search engine.
type SearchPage struct {
	Results       []SearchResult `json:"results"`
	TotalElements int64          `json:"total_elements"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
}

// SearchHistory is one persisted search request, written once and read-only
// afterward. UserID is empty for anonymous searches.
type SearchHistory struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	SearchQuery  string    `json:"search_query"`
	SearchFilter string    `json:"search_filters"`
	ResultsCount int       `json:"results_count"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
