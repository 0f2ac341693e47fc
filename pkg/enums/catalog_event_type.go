package enums

// CatalogEventType enumerates the events published after admin catalog mutations.
type CatalogEventType string

const (
	CatalogEventProductCreated CatalogEventType = "product.created"
	CatalogEventProductUpdated CatalogEventType = "product.updated"
	CatalogEventProductDeleted CatalogEventType = "product.deleted"
)

// String implements fmt.Stringer.
func (t CatalogEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CatalogEventType.
func (t CatalogEventType) IsValid() bool {
	switch t {
	case CatalogEventProductCreated, CatalogEventProductUpdated, CatalogEventProductDeleted:
		return true
	}
	return false
}
