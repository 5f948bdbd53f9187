// Package sliceutil provides generic slice helpers.
package sliceutil

// Deduplicate removes items whose key was already seen, keeping the first
// occurrence and the original order.
//
//	providers := sliceutil.Deduplicate([]string{"groq", "openai", "GROQ"}, strings.ToLower)
//	// ["groq", "openai"]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		key := keyFunc(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}
	return result
}
