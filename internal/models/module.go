// Package models defines the catalog record and its local and remote shapes.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/modcatalog/internal/common"
)

// Module is one catalog entry: a repair part listing for a phone model.
// JSON names are the local field names.
type Module struct {
	// ID is generated client-side at creation and never changes.
	ID string `json:"id"`

	Brand string  `json:"brand"`
	Model string  `json:"model"`
	Price float64 `json:"price"`

	// Description is optional; "" means absent.
	Description string `json:"description,omitempty"`

	// ImageData is either an inline data-URI or a remote URL; "" means absent.
	ImageData string `json:"imageData,omitempty"`

	// CreatedAt is set once at creation and is the listing sort key.
	CreatedAt time.Time `json:"createdAt"`
}

// Draft is the user-supplied part of a Module.
type Draft struct {
	Brand       string
	Model       string
	Price       float64
	Description string
	ImageData   string
}

// Validate checks the required fields.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Brand) == "" {
		return fmt.Errorf("%w: brand is required", common.ErrValidation)
	}
	if strings.TrimSpace(d.Model) == "" {
		return fmt.Errorf("%w: model is required", common.ErrValidation)
	}
	if !(d.Price > 0) || math.IsInf(d.Price, 0) {
		return fmt.Errorf("%w: price must be greater than zero", common.ErrValidation)
	}
	return nil
}

// Draft returns the user-editable part of m.
func (m Module) Draft() Draft {
	return Draft{
		Brand:       m.Brand,
		Model:       m.Model,
		Price:       m.Price,
		Description: m.Description,
		ImageData:   m.ImageData,
	}
}

// NewModule builds a Module from d. Text fields are stored as given.
func NewModule(id string, createdAt time.Time, d Draft) Module {
	return Module{
		ID:          id,
		Brand:       d.Brand,
		Model:       d.Model,
		Price:       d.Price,
		Description: d.Description,
		ImageData:   d.ImageData,
		CreatedAt:   createdAt,
	}
}

// Timestamp normalises t to the precision both stores keep: UTC, microseconds.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// HasInlineImage reports whether ImageData holds an inline image data-URI.
func (m Module) HasInlineImage() bool {
	return strings.HasPrefix(m.ImageData, "data:image")
}
