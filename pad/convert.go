package pad

import "math"

// AxisToI16 scales an axis value in [-1,1] to the int16 range, clamping.
func AxisToI16(v float64) int16 {
	return int16(math.Round(clamp(v, -1, 1) * math.MaxInt16))
}

// AxisToI8 scales an axis value in [-1,1] to the int8 range, clamping.
func AxisToI8(v float64) int8 {
	return int8(math.Round(clamp(v, -1, 1) * math.MaxInt8))
}

// ValueToU8 scales a button value in [0,1] to 0-255, clamping.
func ValueToU8(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * math.MaxUint8))
}

// I16ToAxis is the inverse of AxisToI16 for raw platform values.
func I16ToAxis(v int16) float64 {
	if v == math.MinInt16 {
		return -1
	}
	return float64(v) / math.MaxInt16
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
