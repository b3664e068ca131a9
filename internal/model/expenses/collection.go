package expenses

type keyed interface {
	Key() string
}

// The helpers never modify items in place, slices handed out earlier stay
// valid.

func appendItem[T any](items []T, item T) []T {
	res := make([]T, 0, len(items)+1)
	res = append(res, items...)
	return append(res, item)
}

func replaceByKey[T keyed](items []T, key string, item T) []T {
	res := make([]T, len(items))
	for i, it := range items {
		if it.Key() == key {
			res[i] = item
			continue
		}
		res[i] = it
	}
	return res
}

func removeByKey[T keyed](items []T, key string) []T {
	res := make([]T, 0, len(items))
	for _, it := range items {
		if it.Key() != key {
			res = append(res, it)
		}
	}
	return res
}

func clone[T any](items []T) []T {
	res := make([]T, len(items))
	copy(res, items)
	return res
}
