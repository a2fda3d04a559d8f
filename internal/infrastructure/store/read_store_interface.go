package store

// ReadStoreInterface is the query-side contract. Models are grouped into
// named collections ("products", "carts", "issues", ...) keyed by ID.
type ReadStoreInterface interface {
	// Set stores or replaces a read model
	Set(collection, id string, data any)

	// Get retrieves a read model by ID
	Get(collection, id string) (any, bool, error)

	// GetAll lists every model in a collection
	GetAll(collection string) ([]any, error)

	// Delete removes a read model
	Delete(collection, id string)

	// Update applies fn to the current model; false when the ID is absent
	Update(collection, id string, updateFn func(current any) any) bool
}
