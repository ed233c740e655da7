package models

import "time"

// RemoteModule is a row of the remote modules table. JSON names are the
// remote column names.
type RemoteModule struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`

	// UpdatedAt only exists remotely; it is set on every upsert.
	UpdatedAt time.Time `json:"updated_at"`
}

// fieldColumns maps local field names to remote column names.
var fieldColumns = map[string]string{
	"id":          "id",
	"model":       "model",
	"brand":       "brand",
	"price":       "price",
	"description": "description",
	"imageData":   "image_url",
	"createdAt":   "created_at",
}

// RemoteColumn returns the remote column for a local field name.
func RemoteColumn(field string) (string, bool) {
	c, ok := fieldColumns[field]
	return c, ok
}

// LocalField returns the local field name for a remote column. The remote-only
// updated_at column has no local counterpart.
func LocalField(column string) (string, bool) {
	for f, c := range fieldColumns {
		if c == column {
			return f, true
		}
	}
	return "", false
}

// ToRemote translates m into its remote row shape.
func ToRemote(m Module, updatedAt time.Time) RemoteModule {
	return RemoteModule{
		ID:          m.ID,
		Model:       m.Model,
		Brand:       m.Brand,
		Price:       m.Price,
		Description: nullString(m.Description),
		ImageURL:    nullString(m.ImageData),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

// ToLocal translates a remote row back into a Module, dropping updated_at.
func (r RemoteModule) ToLocal() Module {
	return Module{
		ID:          r.ID,
		Model:       r.Model,
		Brand:       r.Brand,
		Price:       r.Price,
		Description: deref(r.Description),
		ImageData:   deref(r.ImageURL),
		CreatedAt:   Timestamp(r.CreatedAt),
	}
}

// nullString maps "" to NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
