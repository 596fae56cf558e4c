package beat

import "github.com/jsphweid/mirlive/util"

const (
	histBins = 30
	histMin  = 0.1
	histMax  = 2.0

	// smoothed bins must clear this absolute floor to count as peaks
	peakFloor = 0.05
)

var smoothingKernel = [5]float64{0.1, 0.2, 0.4, 0.2, 0.1}

const binWidth = (histMax - histMin) / histBins

func binCenter(i int) float64 {
	return histMin + (float64(i)+0.5)*binWidth
}

func histogram(intervals []float64) ([histBins]int, uint64) {
	var hist [histBins]int
	for _, v := range intervals {
		if v < histMin || v >= histMax {
			continue
		}
		hist[int((v-histMin)/binWidth)]++
	}
	return hist, util.Sum(hist[:])
}

// smooth convolves with the 5-tap kernel, zero-padded at the edges.
func smooth(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		var acc float64
		for k, w := range smoothingKernel {
			j := i + k - 2
			if j >= 0 && j < len(values) {
				acc += w * values[j]
			}
		}
		out[i] = acc
	}
	return out
}
