package utils

func Ptr[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value for nil.
func Val[T any](p *T) T {
	if p != nil {
		return *p
	}
	var zero T
	return zero
}
