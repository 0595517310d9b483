package pure_utils

// PtrOrNil returns nil for the zero value of T, a pointer to a copy of value otherwise.
func PtrOrNil[T comparable](value T) *T {
	var zero T
	if value == zero {
		return nil
	}
	return &value
}
