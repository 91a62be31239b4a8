package frameproto

import "github.com/okhi/okcollect/internal/domain"

// NormalizeLocation flattens the frame's raw snake_case location object into
// a [domain.Location]. The function is total: every output field either maps
// from a known input path or stays at its zero value, regardless of what the
// frame sent.
func NormalizeLocation(raw map[string]any) domain.Location {
	geo := objField(raw, "geo_point")
	streetView := objField(raw, "street_view")
	return domain.Location{
		ID:                strField(raw, "id"),
		Lat:               numField(geo, "lat"),
		Lon:               numField(geo, "lon"),
		PlaceID:           strField(raw, "place_id"),
		PlusCode:          strField(raw, "plus_code"),
		PropertyName:      strField(raw, "property_name"),
		PropertyNumber:    strField(raw, "property_number"),
		StreetName:        strField(raw, "street_name"),
		Title:             strField(raw, "title"),
		Subtitle:          strField(raw, "subtitle"),
		Directions:        strField(raw, "directions"),
		OtherInformation:  strField(raw, "other_information"),
		URL:               strField(raw, "url"),
		StreetViewPanoID:  strField(streetView, "pano_id"),
		StreetViewPanoURL: strField(streetView, "url"),
		UserID:            strField(raw, "user_id"),
		PhotoURL:          strField(raw, "photo"),
		Country:           strField(raw, "country"),
		State:             strField(raw, "state"),
		City:              strField(raw, "city"),
		DisplayTitle:      strField(raw, "display_title"),
		UsageTypes:        strListField(raw, "usage_types"),
	}
}

// NormalizeUser maps the frame's raw user object into a [domain.User].
// Total in the same sense as [NormalizeLocation].
func NormalizeUser(raw map[string]any) domain.User {
	return domain.User{
		Phone:     strField(raw, "phone"),
		FirstName: strField(raw, "first_name"),
		LastName:  strField(raw, "last_name"),
		Email:     strField(raw, "email"),
		ID:        strField(raw, "id"),
	}
}

func strField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func numField(m map[string]any, key string) *float64 {
	if m == nil {
		return nil
	}
	switch n := m[key].(type) {
	case float64:
		v := n
		return &v
	case int:
		v := float64(n)
		return &v
	default:
		return nil
	}
}

func objField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]any)
	return o
}

// strListField keeps only the string elements of a list-valued field and
// returns nil for anything that is not a list, so a malformed value reads
// the same as an absent one.
func strListField(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	list, ok := m[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
