package enums

// ImageSource tags an admin image preview with the pool it came from.
type ImageSource string

const (
	ImageSourceExisting ImageSource = "existing"
	ImageSourceNew      ImageSource = "new"
)

// String implements fmt.Stringer.
func (s ImageSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ImageSource.
func (s ImageSource) IsValid() bool {
	return s == ImageSourceExisting || s == ImageSourceNew
}
