package ocr

import (
	"sort"
)

// LineBandHeight is the vertical bucket, in pixels, used to decide that two
// words sit on the same table row.
const LineBandHeight = 10

// GroupLines buckets words into line bands by top/LineBandHeight and orders
// each band left to right. Bands are returned top to bottom.
func GroupLines(words []Word) [][]string {
	bands := make(map[int][]Word)
	for _, w := range words {
		key := floorDiv(w.Top, LineBandHeight)
		bands[key] = append(bands[key], w)
	}
	keys := make([]int, 0, len(bands))
	for k := range bands {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		band := bands[k]
		sort.SliceStable(band, func(i, j int) bool { return band[i].Left < band[j].Left })
		row := make([]string, 0, len(band))
		for _, w := range band {
			row = append(row, w.Text)
		}
		rows = append(rows, row)
	}
	return rows
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
