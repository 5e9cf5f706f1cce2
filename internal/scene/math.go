package scene

import "math"

func tan(x float32) float32  { return float32(math.Tan(float64(x))) }
func atan(x float32) float32 { return float32(math.Atan(float64(x))) }
