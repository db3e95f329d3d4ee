package cache

// GetAs is Get with a type assertion. A value of another type is reported as
// absent; the lookup still counts as a hit.
func GetAs[V any](c *Cache, ns Namespace, key string) (V, bool) {
	var zero V
	v, ok := c.Get(ns, key)
	if !ok {
		return zero, false
	}
	t, ok := v.(V)
	if !ok {
		return zero, false
	}
	return t, true
}
