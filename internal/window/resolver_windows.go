//go:build windows
// +build windows

package window

import (
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"unsafe"
)

var (
	user32                       = syscall.NewLazyDLL("user32.dll")
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetClientRect            = user32.NewProc("GetClientRect")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetDpiForWindow          = user32.NewProc("GetDpiForWindow")
	procOpenProcess              = kernel32.NewProc("OpenProcess")
	procCloseHandle              = kernel32.NewProc("CloseHandle")
	procQueryFullProcessImage    = kernel32.NewProc("QueryFullProcessImageNameW")
)

const (
	processQueryLimitedInformation = 0x1000
	defaultDPI                     = 96
)

// RECT structure for Windows API
type RECT struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type enumContext struct {
	target     string
	foreground uintptr
	found      []candidate
}

// EnumWindows callbacks created with syscall.NewCallback are never released,
// so a single callback is shared and the per-call state goes through a lock.
var (
	enumMu    sync.Mutex
	enumState *enumContext
)

var enumWindowsCallback = syscall.NewCallback(func(hwnd, lparam uintptr) uintptr {
	st := enumState
	if st == nil {
		return 0
	}
	visible, _, _ := procIsWindowVisible.Call(hwnd)
	if visible == 0 {
		return 1
	}
	exe := windowExecutableName(hwnd)
	if exe == "" || !strings.Contains(exe, st.target) {
		return 1
	}

	var rect RECT
	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rect)))
	if ret == 0 {
		return 1
	}
	region := Region{
		Left:   int(rect.Left),
		Top:    int(rect.Top),
		Width:  int(rect.Right - rect.Left),
		Height: int(rect.Bottom - rect.Top),
	}
	if region.Width <= 0 || region.Height <= 0 {
		return 1
	}
	region = applyWindowDPI(hwnd, region)

	var client RECT
	clientArea := 0
	if ret, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&client))); ret != 0 {
		clientArea = int(client.Right-client.Left) * int(client.Bottom-client.Top)
	}

	st.found = append(st.found, candidate{
		region:     region,
		clientArea: clientArea,
		foreground: hwnd == st.foreground,
	})
	return 1
})

// enumCandidates walks all visible top-level windows and keeps those whose
// owning executable matches processName (case-insensitive substring).
func enumCandidates(processName string) ([]candidate, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	fg, _, _ := procGetForegroundWindow.Call()
	enumState = &enumContext{
		target:     strings.ToLower(processName),
		foreground: fg,
	}
	defer func() { enumState = nil }()

	procEnumWindows.Call(enumWindowsCallback, 0)
	return enumState.found, nil
}

// windowExecutableName returns the lowercase basename of the executable
// owning hwnd, or "" when it cannot be resolved.
func windowExecutableName(hwnd uintptr) string {
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return ""
	}
	hproc, _, _ := procOpenProcess.Call(processQueryLimitedInformation, 0, uintptr(pid))
	if hproc == 0 {
		return ""
	}
	defer procCloseHandle.Call(hproc)

	buf := make([]uint16, 512)
	size := uint32(len(buf))
	ret, _, _ := procQueryFullProcessImage.Call(
		hproc,
		0,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 {
		return ""
	}
	path := syscall.UTF16ToString(buf[:size])
	return strings.ToLower(filepath.Base(path))
}

// applyWindowDPI scales the window rectangle to physical pixels when the
// window reports a non-default per-window DPI. On systems where the OS
// virtualizes coordinates for DPI-unaware callers the reported rect is in
// logical pixels, so the captured-region size must be corrected to keep
// template coordinates consistent.
func applyWindowDPI(hwnd uintptr, region Region) Region {
	if err := procGetDpiForWindow.Find(); err != nil {
		// Pre-1607 Windows, no per-window DPI query available.
		return region
	}
	dpi, _, _ := procGetDpiForWindow.Call(hwnd)
	if dpi == 0 || dpi == defaultDPI {
		return region
	}
	scale := float64(dpi) / float64(defaultDPI)
	region.Width = int(float64(region.Width)*scale + 0.5)
	region.Height = int(float64(region.Height)*scale + 0.5)
	return region
}
