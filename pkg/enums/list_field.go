package enums

import "fmt"

// ListField names a list-valued product attribute edited in the admin form.
type ListField string

const (
	ListFieldFeatures ListField = "features"
	ListFieldTags     ListField = "tags"
	ListFieldColors   ListField = "colors"
)

var validListFields = []ListField{
	ListFieldFeatures,
	ListFieldTags,
	ListFieldColors,
}

// String implements fmt.Stringer.
func (f ListField) String() string {
	return string(f)
}

// IsValid reports whether the value is a known ListField.
func (f ListField) IsValid() bool {
	for _, candidate := range validListFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseListField converts raw input into a ListField.
func ParseListField(value string) (ListField, error) {
	for _, candidate := range validListFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid list field %q", value)
}
