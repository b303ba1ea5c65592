package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/models"
)

var ErrUpstreamUnavailable = errors.New("listings service unavailable")

// listingDTO is the remote listing record. Optional fields simply stay at
// their zero value when the upstream omits them.
type listingDTO struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Location       string    `json:"location"`
	City           string    `json:"city"`
	PropertyType   string    `json:"propertyType"`
	ListingType    string    `json:"listingType"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      int       `json:"bathrooms"`
	AreaSqft       float64   `json:"areaSqft"`
	IsFeatured     bool      `json:"isFeatured"`
	IsVerified     bool      `json:"isVerified"`
	ViewsCount     int64     `json:"viewsCount"`
	FavoritesCount int64     `json:"favoritesCount"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedAt      time.Time `json:"createdAt"`
}

type listingsPage struct {
	Content       []listingDTO `json:"content"`
	TotalElements int64        `json:"totalElements"`
}

type listingsEnvelope struct {
	Data listingsPage `json:"data"`
}

// Client calls the remote listings endpoint. A free-text query routes to the
// text-search sub-resource; pure structured filters route to /filter.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// FetchListings executes the translated filter query and maps the page into
// local projections.
func (c *Client) FetchListings(req models.SearchRequest) ([]models.SearchResult, int64, error) {
	endpoint := c.baseURL + "/filter"
	if req.Query != "" {
		endpoint = c.baseURL + "/search"
	}

	params := url.Values{}
	if req.Query != "" {
		params.Set("query", req.Query)
	}
	if req.City != "" {
		params.Set("city", req.City)
	}
	if req.PropertyType != "" {
		params.Set("propertyType", req.PropertyType)
	}
	if req.ListingType != "" {
		params.Set("listingType", req.ListingType)
	}
	if req.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*req.MinPrice, 'f', -1, 64))
	}
	if req.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*req.MaxPrice, 'f', -1, 64))
	}
	if req.Bedrooms != nil {
		params.Set("bedrooms", strconv.Itoa(*req.Bedrooms))
	}
	if req.MinArea != nil {
		params.Set("minArea", strconv.Itoa(*req.MinArea))
	}
	if req.MaxArea != nil {
		params.Set("maxArea", strconv.Itoa(*req.MaxArea))
	}
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("size", strconv.Itoa(req.Size))
	if req.SortBy != "" {
		params.Set("sortBy", req.SortBy)
	}

	return c.fetch(endpoint + "?" + params.Encode())
}

// FetchFeatured returns the featured listings page.
func (c *Client) FetchFeatured(limit int) ([]models.SearchResult, error) {
	results, _, err := c.fetch(fmt.Sprintf("%s/featured?page=0&size=%d", c.baseURL, limit))
	return results, err
}

func (c *Client) fetch(fullURL string) ([]models.SearchResult, int64, error) {
	resp, err := c.client.Get(fullURL)
	if err != nil {
		c.logger.WithError(err).Error("Listings request failed")
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var envelope listingsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("failed to parse listings response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(envelope.Data.Content))
	for _, dto := range envelope.Data.Content {
		results = append(results, models.SearchResult{
			ID:             dto.ID,
			Title:          dto.Title,
			Description:    dto.Description,
			Price:          dto.Price,
			Location:       dto.Location,
			City:           dto.City,
			PropertyType:   dto.PropertyType,
			ListingType:    dto.ListingType,
			Bedrooms:       dto.Bedrooms,
			Bathrooms:      dto.Bathrooms,
			AreaSqft:       dto.AreaSqft,
			IsFeatured:     dto.IsFeatured,
			IsVerified:     dto.IsVerified,
			ViewsCount:     dto.ViewsCount,
			FavoritesCount: dto.FavoritesCount,
			Latitude:       dto.Latitude,
			Longitude:      dto.Longitude,
			CreatedAt:      dto.CreatedAt,
		})
	}
	return results, envelope.Data.TotalElements, nil
}
