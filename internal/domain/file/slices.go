package file

import (
	"bytes"
	"sort"
)

// Limit максимальное заявленное число фрагментов среди всех полученных
func Limit(slices []Slice) int {
	limit := 0
	for _, s := range slices {
		if s.Limit > limit {
			limit = s.Limit
		}
	}
	return limit
}

// Dedup убирает повторы по индексу (побеждает последний) и упорядочивает по индексу
func Dedup(slices []Slice) []Slice {
	byIndex := make(map[int]Slice, len(slices))
	for _, s := range slices {
		byIndex[s.Index] = s
	}
	out := make([]Slice, 0, len(byIndex))
	for _, s := range byIndex {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// InRange только фрагменты с индексами 1..Limit
func InRange(slices []Slice) []Slice {
	limit := Limit(slices)
	out := make([]Slice, 0, len(slices))
	for _, s := range slices {
		if s.Index >= 1 && s.Index <= limit {
			out = append(out, s)
		}
	}
	return out
}

// received множество различных индексов в диапазоне 1..limit
func received(slices []Slice, limit int) map[int]struct{} {
	set := make(map[int]struct{}, limit)
	for _, s := range slices {
		if s.Index < 1 || s.Index > limit {
			continue
		}
		set[s.Index] = struct{}{}
	}
	return set
}

// IsComplete все индексы 1..limit присутствуют. Повторы не учитываются.
func IsComplete(slices []Slice) bool {
	limit := Limit(slices)
	return limit > 0 && len(received(slices, limit)) == limit
}

// FindMissing упорядоченный список отсутствующих индексов 1..limit
func FindMissing(slices []Slice) []int {
	limit := Limit(slices)
	set := received(slices, limit)

	var missing []int
	for i := 1; i <= limit; i++ {
		if _, ok := set[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// NearComplete доля полученных индексов не меньше порога
func NearComplete(slices []Slice, threshold float64) bool {
	limit := Limit(slices)
	if limit == 0 {
		return false
	}
	return float64(len(received(slices, limit)))/float64(limit) >= threshold
}

// Extract фрагменты с запрошенными индексами
func Extract(slices []Slice, indices []int) []Slice {
	limit := Limit(slices)
	want := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i >= 1 && i <= limit {
			want[i] = struct{}{}
		}
	}

	var out []Slice
	for _, s := range Dedup(slices) {
		if _, ok := want[s.Index]; ok {
			out = append(out, Slice{Index: s.Index, Limit: limit, Data: s.Data})
		}
	}
	return out
}

// Pad склеивает данные фрагментов в порядке индексов
func Pad(slices []Slice) []byte {
	var buf bytes.Buffer
	for _, s := range Dedup(slices) {
		buf.Write(s.Data)
	}
	return buf.Bytes()
}
