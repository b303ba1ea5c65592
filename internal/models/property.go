package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidArgument marks an unparseable enum value. The offending value is
// echoed back in the wrapped message.
var ErrInvalidArgument = errors.New("invalid argument")

// PropertyType is the kind of property being listed.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeVilla     PropertyType = "VILLA"
	PropertyTypePlot      PropertyType = "PLOT"
	PropertyTypeHouse     PropertyType = "HOUSE"
	PropertyTypeOffice    PropertyType = "OFFICE"
)

// ListingType distinguishes sale listings from rentals.
type ListingType string

const (
	ListingTypeSale ListingType = "SALE"
	ListingTypeRent ListingType = "RENT"
)

// PropertyStatus is the lifecycle state of a listing.
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "ACTIVE"
	PropertyStatusSold     PropertyStatus = "SOLD"
	PropertyStatusRented   PropertyStatus = "RENTED"
	PropertyStatusInactive PropertyStatus = "INACTIVE"
)

// ParsePropertyType parses a property type string case-insensitively.
func ParsePropertyType(s string) (PropertyType, error) {
	switch t := PropertyType(strings.ToUpper(s)); t {
	case PropertyTypeApartment, PropertyTypeVilla, PropertyTypePlot, PropertyTypeHouse, PropertyTypeOffice:
		return t, nil
	}
	return "", fmt.Errorf("%w: property type %q", ErrInvalidArgument, s)
}

// ParseListingType parses a listing type string case-insensitively.
func ParseListingType(s string) (ListingType, error) {
	switch t := ListingType(strings.ToUpper(s)); t {
	case ListingTypeSale, ListingTypeRent:
		return t, nil
	}
	return "", fmt.Errorf("%w: listing type %q", ErrInvalidArgument, s)
}

// ParsePropertyStatus parses a status string case-insensitively.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	switch t := PropertyStatus(strings.ToUpper(s)); t {
	case PropertyStatusActive, PropertyStatusSold, PropertyStatusRented, PropertyStatusInactive:
		return t, nil
	}
	return "", fmt.Errorf("%w: property status %q", ErrInvalidArgument, s)
}

// Property is the authoritative listing record on the command side.
type Property struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	OwnerID      string         `json:"owner_id" gorm:"index;not null"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	Location     string         `json:"location" gorm:"not null"`
	City         string         `json:"city"`
	Price        float64        `json:"price"`
	PropertyType PropertyType   `json:"property_type"`
	ListingType  ListingType    `json:"listing_type"`
	Bedrooms     *int           `json:"bedrooms"`
	Bathrooms    *int           `json:"bathrooms"`
	AreaSqft     *float64       `json:"area_sqft"`
	Latitude     *float64       `json:"latitude"`
	Longitude    *float64       `json:"longitude"`
	Status       PropertyStatus `json:"status"`
	ViewsCount   int64          `json:"views_count"`
	LastViewedAt *time.Time     `json:"last_viewed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}
