package models

import (
	"fmt"
	"strings"

	"hoarding-server/geo"
	apperrors "hoarding-server/utils/errors"
)

// Validate checks every field of an add request and returns the listing it
// describes, without id or ownership fields. Bad fields are enumerated in
// one error; a draft whose only problem is its location gets the location
// error itself.
func (d HoardingDraft) Validate() (Hoarding, error) {
	var fields, details []string
	reject := func(field, detail string) {
		fields = append(fields, field)
		details = append(details, detail)
	}

	title := strings.TrimSpace(d.Title)
	description := strings.TrimSpace(d.Description)
	size := strings.TrimSpace(d.Size)
	if title == "" {
		reject("title", "title is required")
	}
	if description == "" {
		reject("description", "description is required")
	}
	if size == "" {
		reject("size", "size is required")
	}
	price, ok := ParsePrice(d.Price)
	if !ok {
		reject("price", fmt.Sprintf("price must be a positive number, got %v", d.Price))
	}

	point, locErr := ValidateLocation(d.Location)
	if locErr != nil {
		if len(fields) == 0 {
			return Hoarding{}, locErr
		}
		reject("location", locErr.Error())
	}
	if len(fields) > 0 {
		return Hoarding{}, apperrors.Validation("Invalid fields: "+strings.Join(fields, ", "), details...)
	}

	availability := true
	if d.Availability != nil {
		availability = *d.Availability
	}
	return Hoarding{
		Title:        title,
		Description:  description,
		Size:         size,
		Price:        price,
		Location:     point,
		Address:      strings.TrimSpace(d.Address),
		Availability: availability,
	}, nil
}

// Validate turns a patch into a store update. Text fields may not be
// blanked and a new location is checked like a draft's.
func (p HoardingPatch) Validate() (HoardingUpdate, error) {
	var u HoardingUpdate
	var fields []string
	text := func(name string, v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			fields = append(fields, name)
			return nil
		}
		return &t
	}
	u.Title = text("title", p.Title)
	u.Description = text("description", p.Description)
	u.Size = text("size", p.Size)
	if p.Price != nil {
		if price, ok := ParsePrice(*p.Price); ok {
			u.Price = &price
		} else {
			fields = append(fields, "price")
		}
	}
	if p.Address != nil {
		addr := strings.TrimSpace(*p.Address)
		u.Address = &addr
	}
	u.Availability = p.Availability
	if p.Location != nil {
		point, err := ValidateLocation(p.Location)
		if err != nil {
			if len(fields) == 0 {
				return HoardingUpdate{}, err
			}
			fields = append(fields, "location")
		} else {
			u.Location = &point
		}
	}
	if len(fields) > 0 {
		return HoardingUpdate{}, apperrors.Validation("Invalid fields: "+strings.Join(fields, ", "), fields...)
	}
	return u, nil
}

// ValidateLocation accepts a GeoJSON point with exactly [longitude, latitude].
func ValidateLocation(loc *DraftLocation) (GeoPoint, error) {
	if loc == nil || (loc.Type != "" && loc.Type != "Point") || len(loc.Coordinates) != 2 {
		return GeoPoint{}, apperrors.Validation(
			`Invalid location format. Expected {type: "Point", coordinates: [longitude, latitude]}`,
			fmt.Sprintf("location=%v", describeLocation(loc)))
	}
	c, err := geo.ValidateCoordinate(loc.Coordinates[0], loc.Coordinates[1])
	if err != nil {
		return GeoPoint{}, err
	}
	return PointFrom(c), nil
}

func describeLocation(loc *DraftLocation) string {
	if loc == nil {
		return "missing"
	}
	return fmt.Sprintf("{type:%q coordinates:%v}", loc.Type, loc.Coordinates)
}

// ParsePrice accepts any positive finite number, including numeric strings.
func ParsePrice(v any) (float64, bool) {
	f, ok := geo.ParseNumber(v)
	if !ok || f <= 0 {
		return 0, false
	}
	return f, true
}
