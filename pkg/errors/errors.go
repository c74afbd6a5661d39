package errors

import "fmt"

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a storefront key does not authenticate
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrInvalidCatalog is returned when the pricing catalog fails validation
type ErrInvalidCatalog struct {
	Path   string
	Reason string
}

func (e *ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("invalid catalog at %s: %s", e.Path, e.Reason)
}

// ErrVariantCreation is returned when the commerce backend rejects a priced variant
type ErrVariantCreation struct {
	CatalogItemID string
	Err           error
}

func (e *ErrVariantCreation) Error() string {
	return fmt.Sprintf("failed to create variant for %s: %v", e.CatalogItemID, e.Err)
}

func (e *ErrVariantCreation) Unwrap() error {
	return e.Err
}

// ErrProvisioningInProgress is returned when the same cart action is already being provisioned
type ErrProvisioningInProgress struct {
	Key string
}

func (e *ErrProvisioningInProgress) Error() string {
	return fmt.Sprintf("provisioning already in progress for %s", e.Key)
}

// ErrIncompleteSelection is returned when a price is requested for a selection that cannot be priced yet
type ErrIncompleteSelection struct {
	Missing []string
}

func (e *ErrIncompleteSelection) Error() string {
	return fmt.Sprintf("selection incomplete: %v", e.Missing)
}
