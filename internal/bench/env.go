package bench

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"

	"github.com/cwbudde/rggbconv/internal/store"
)

// CaptureEnvironment describes the current machine for a run report.
func CaptureEnvironment() store.Environment {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = "unknown"
	}
	return store.Environment{
		GOOS:          runtime.GOOS,
		GOARCH:        runtime.GOARCH,
		GoVersion:     runtime.Version(),
		CPU:           brand,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		CacheL1D:      cpuid.CPU.Cache.L1D,
		CacheL2:       cpuid.CPU.Cache.L2,
		CacheL3:       cpuid.CPU.Cache.L3,
		Hz:            cpuid.CPU.Hz,
		HasAVX2:       cpu.X86.HasAVX2,
		HasASIMD:      cpu.ARM64.HasASIMD,
	}
}
