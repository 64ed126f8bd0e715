package valueobject

// ValidationError reports a value that failed domain validation.
// Constructors fail fast with this type; callers decide the user-visible shape.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
