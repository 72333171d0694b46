package format

// DerefString unwraps an optional text column, substituting fallback when
// the value is absent.
func DerefString(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
