package report

import "math"

// Bin is one histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
	Count int     `yaml:"count" json:"count"`
}

// Histogram buckets values into bins equal-width bins over [lo, hi]. The last
// bin includes hi; NaN and values outside the range are ignored.
func Histogram(values []float64, lo, hi float64, bins int) []Bin {
	if bins <= 0 || hi <= lo {
		return nil
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			continue
		}
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}
