package utils

import (
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/mat"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

func IsNan(A any) bool {
	switch v := A.(type) {
	case float64:
		return math.IsNaN(v)
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) {
				return true
			}
		}
	case *mat.Dense:
		if v == nil || v.IsEmpty() {
			return false
		}
		raw := v.RawMatrix()
		nr, nc := v.Dims()
		for i := 0; i < nr; i++ {
			if IsNan(raw.Data[i*raw.Stride : i*raw.Stride+nc]) {
				return true
			}
		}
	case CSR:
		return IsNan(v.Data())
	}
	return false
}
