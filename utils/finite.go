package utils

import "math"

func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func Finite3(x, y, z float64) bool {
	return Finite(x) && Finite(y) && Finite(z)
}
