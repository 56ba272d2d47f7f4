package extraction

// opt collapses the (value, ok) result of a fallible lookup into the
// record schema's optional form: nil unless the lookup succeeded with a
// non-empty value.  Every field of every dialect funnels through this one
// helper so the fallback-to-absent policy is not duplicated per field.
func opt(s string, ok bool) *string {
	if !ok || s == "" {
		return nil
	}
	v := s
	return &v
}
