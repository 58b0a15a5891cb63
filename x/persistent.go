package x

// Validater is implemented by messages and models that check their own
// consistency before being handled or persisted.
type Validater interface {
	Validate() error
}
