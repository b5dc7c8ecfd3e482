// Package platform reports facts about the host a process runs on.
package platform

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	log "github.com/sirupsen/logrus"
)

// HostFields describes the CPU the forward passes run on.
func HostFields() log.Fields {
	return log.Fields{
		"cpu":            cpuid.CPU.BrandName,
		"physical_cores": cpuid.CPU.PhysicalCores,
		"logical_cores":  cpuid.CPU.LogicalCores,
		"gomaxprocs":     runtime.GOMAXPROCS(0),
		"avx2":           cpuid.CPU.Supports(cpuid.AVX2),
		"avx512":         cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
		"fma":            cpuid.CPU.Supports(cpuid.FMA3),
	}
}
