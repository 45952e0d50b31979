package system

import (
	"log"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so ffmpeg and the HTTP
// client never trip the default on macOS/Linux.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	}
}

// FindFFmpeg locates the ffmpeg binary on PATH.
func FindFFmpeg() (string, error) {
	return exec.LookPath("ffmpeg")
}

// HostStats is a snapshot of the host for the performance report.
type HostStats struct {
	CPUCores   int
	MemUsedMB  uint64
	MemTotalMB uint64
}

func CollectHostStats() HostStats {
	stats := HostStats{}
	if cores, err := cpu.Counts(true); err == nil {
		stats.CPUCores = cores
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsedMB = vm.Used / (1 << 20)
		stats.MemTotalMB = vm.Total / (1 << 20)
	}
	return stats
}
