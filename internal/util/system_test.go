package util

import (
	"runtime"
	"testing"
)

func TestLogicalCores(t *testing.T) {
	cores := LogicalCores()
	if cores <= 0 {
		t.Errorf("LogicalCores() = %d, want > 0", cores)
	}
	if cores != runtime.NumCPU() {
		t.Errorf("LogicalCores() = %d, want %d (runtime.NumCPU())", cores, runtime.NumCPU())
	}
}

func TestDefaultThreadHint(t *testing.T) {
	hint := DefaultThreadHint()
	if hint <= 0 {
		t.Errorf("DefaultThreadHint() = %d, want > 0", hint)
	}
	if hint > LogicalCores() {
		t.Errorf("DefaultThreadHint() = %d > LogicalCores() = %d", hint, LogicalCores())
	}
}

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	if info.NumCPU <= 0 {
		t.Errorf("SystemInfo.NumCPU = %d, want > 0", info.NumCPU)
	}
	if info.OS != runtime.GOOS {
		t.Errorf("SystemInfo.OS = %q, want %q", info.OS, runtime.GOOS)
	}
}
