package folder

import "sort"

// Window возвращает элементы с begin по end включительно, как ZRANGE в Redis:
// отрицательные индексы считаются с конца, границы обрезаются.
func Window[T any](items []T, begin, end int) []T {
	n := len(items)
	if n == 0 {
		return nil
	}
	if begin < 0 {
		begin += n
	}
	if end < 0 {
		end += n
	}
	if begin < 0 {
		begin = 0
	}
	if end >= n {
		end = n - 1
	}
	if begin > end {
		return nil
	}
	return clone(items[begin : end+1])
}

// After до n элементов строго после якоря. Якорь ищется по порядку контейнера,
// отсутствующий якорь занимает позицию вставки.
func After[T any](items []T, anchor T, n int, cmp func(a, b T) int) []T {
	if n <= 0 {
		return nil
	}
	i := sort.Search(len(items), func(i int) bool { return cmp(items[i], anchor) > 0 })
	end := i + n
	if end > len(items) {
		end = len(items)
	}
	return clone(items[i:end])
}

// Before до n элементов строго перед якорем
func Before[T any](items []T, anchor T, n int, cmp func(a, b T) int) []T {
	if n <= 0 {
		return nil
	}
	j := sort.Search(len(items), func(i int) bool { return cmp(items[i], anchor) >= 0 })
	begin := j - n
	if begin < 0 {
		begin = 0
	}
	return clone(items[begin:j])
}

// Through количество элементов до якоря включительно
func Through[T any](items []T, anchor T, cmp func(a, b T) int) int {
	return sort.Search(len(items), func(i int) bool { return cmp(items[i], anchor) > 0 })
}

// Insert вставляет элемент с сохранением порядка. Возвращает false, если равный уже есть.
func Insert[T any](items []T, item T, cmp func(a, b T) int) ([]T, bool) {
	i := sort.Search(len(items), func(i int) bool { return cmp(items[i], item) >= 0 })
	if i < len(items) && cmp(items[i], item) == 0 {
		return items, false
	}
	items = append(items, item)
	copy(items[i+1:], items[i:])
	items[i] = item
	return items, true
}

// Delete удаляет равный элемент
func Delete[T any](items []T, item T, cmp func(a, b T) int) ([]T, bool) {
	i := sort.Search(len(items), func(i int) bool { return cmp(items[i], item) >= 0 })
	if i >= len(items) || cmp(items[i], item) != 0 {
		return items, false
	}
	return append(items[:i], items[i+1:]...), true
}

func clone[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
