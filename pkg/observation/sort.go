package observation

import (
	"strings"

	"github.com/sandrolain/gobinding/pkg/types"
)

// insertionSortThreshold is the partition size at or below which quickSort
// switches to insertion sort.
const insertionSortThreshold = 10

// sortWithIndexMap sorts values in place, permuting indexMap in parallel so
// that every entry keeps following its value. Undefined values sort last and
// are never passed to compare.
func sortWithIndexMap(values []interface{}, indexMap []int, compare func(a, b interface{}) int) {
	n := len(values)
	if n < 2 {
		return
	}
	quickSort(values, indexMap, 0, n, compareUndefinedLast)
	defined := 0
	for defined < n && values[defined] != nil {
		defined++
	}
	if compare == nil {
		compare = compareAsStrings
	}
	quickSort(values, indexMap, 0, defined, compare)
}

func compareUndefinedLast(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return 0
}

func compareAsStrings(a, b interface{}) int {
	return strings.Compare(sortKey(a), sortKey(b))
}

func sortKey(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case types.Null:
		return "null"
	}
	return keyString(Normalize(v))
}

func insertionSort(arr []interface{}, idx []int, from, to int, compare func(a, b interface{}) int) {
	for i := from + 1; i < to; i++ {
		v, ix := arr[i], idx[i]
		j := i - 1
		for ; j >= from; j-- {
			if compare(arr[j], v) > 0 {
				arr[j+1], idx[j+1] = arr[j], idx[j]
			} else {
				break
			}
		}
		arr[j+1], idx[j+1] = v, ix
	}
}

// quickSort is a median-of-three quicksort over arr[from:to] that moves idx
// entries together with their values.
func quickSort(arr []interface{}, idx []int, from, to int, compare func(a, b interface{}) int) {
	for {
		if to-from <= insertionSortThreshold {
			insertionSort(arr, idx, from, to, compare)
			return
		}

		third := from + (to-from)>>1
		v0, i0 := arr[from], idx[from]
		v1, i1 := arr[to-1], idx[to-1]
		v2, i2 := arr[third], idx[third]

		if compare(v0, v1) > 0 {
			v0, v1 = v1, v0
			i0, i1 = i1, i0
		}
		if compare(v0, v2) >= 0 {
			v0, v1, v2 = v2, v0, v1
			i0, i1, i2 = i2, i0, i1
		} else if compare(v1, v2) > 0 {
			v1, v2 = v2, v1
			i1, i2 = i2, i1
		}

		arr[from], idx[from] = v0, i0
		arr[to-1], idx[to-1] = v2, i2
		pivot, ipivot := v1, i1
		lowEnd, highStart := from+1, to-1
		arr[third], idx[third] = arr[lowEnd], idx[lowEnd]
		arr[lowEnd], idx[lowEnd] = pivot, ipivot

	partition:
		for i := lowEnd + 1; i < highStart; i++ {
			v, iv := arr[i], idx[i]
			order := compare(v, pivot)
			if order < 0 {
				arr[i], idx[i] = arr[lowEnd], idx[lowEnd]
				arr[lowEnd], idx[lowEnd] = v, iv
				lowEnd++
			} else if order > 0 {
				for {
					highStart--
					if highStart == i {
						break partition
					}
					order = compare(arr[highStart], pivot)
					if order <= 0 {
						break
					}
				}
				arr[i], idx[i] = arr[highStart], idx[highStart]
				arr[highStart], idx[highStart] = v, iv
				if order < 0 {
					v, iv = arr[i], idx[i]
					arr[i], idx[i] = arr[lowEnd], idx[lowEnd]
					arr[lowEnd], idx[lowEnd] = v, iv
					lowEnd++
				}
			}
		}

		if to-highStart < lowEnd-from {
			quickSort(arr, idx, highStart, to, compare)
			to = lowEnd
		} else {
			quickSort(arr, idx, from, lowEnd, compare)
			from = highStart
		}
	}
}
