package models

import "time"

// Hoarding is a single advertising-space listing.
type Hoarding struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	Size         string    `json:"size" bson:"size"`
	Price        float64   `json:"price" bson:"price"`
	Location     GeoPoint  `json:"location" bson:"location"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	Availability bool      `json:"availability" bson:"availability"`
	CreatedBy    string    `json:"createdBy" bson:"created_by"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`

	// Creator is joined at read time and never persisted.
	Creator *Creator `json:"creator,omitempty" bson:"-"`
}

// Creator is the public identity of the user who created a listing.
type Creator struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// DraftLocation is the incoming GeoJSON location. Coordinates are left
// untyped so the validator can report non-numeric input precisely.
type DraftLocation struct {
	Type        string `json:"type"`
	Coordinates []any  `json:"coordinates"`
}

// HoardingDraft is the payload of an add request.
type HoardingDraft struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Size         string         `json:"size"`
	Price        any            `json:"price"`
	Location     *DraftLocation `json:"location"`
	Address      string         `json:"address,omitempty"`
	Availability *bool          `json:"availability,omitempty"`
}

// HoardingPatch holds the mutable fields of a listing. Nil fields are left
// unchanged.
type HoardingPatch struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Size         *string        `json:"size,omitempty"`
	Price        *float64       `json:"price,omitempty"`
	Location     *DraftLocation `json:"location,omitempty"`
	Address      *string        `json:"address,omitempty"`
	Availability *bool          `json:"availability,omitempty"`
}

// HoardingUpdate is a validated patch, ready for the store.
type HoardingUpdate struct {
	Title        *string
	Description  *string
	Size         *string
	Price        *float64
	Location     *GeoPoint
	Address      *string
	Availability *bool
	UpdatedAt    time.Time
}

// Apply merges u into h.
func (u HoardingUpdate) Apply(h *Hoarding) {
	if u.Title != nil {
		h.Title = *u.Title
	}
	if u.Description != nil {
		h.Description = *u.Description
	}
	if u.Size != nil {
		h.Size = *u.Size
	}
	if u.Price != nil {
		h.Price = *u.Price
	}
	if u.Location != nil {
		h.Location = *u.Location
	}
	if u.Address != nil {
		h.Address = *u.Address
	}
	if u.Availability != nil {
		h.Availability = *u.Availability
	}
	if !u.UpdatedAt.IsZero() {
		h.UpdatedAt = u.UpdatedAt
	}
}
