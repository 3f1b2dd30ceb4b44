//go:build windows

package display

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

// List returns the available displays using WinAPI.
func List() ([]Display, error) {
	dpiX, dpiY := screenDPI()
	state := &enumState{dpiX: dpiX, dpiY: dpiY}
	callback := syscall.NewCallback(state.enumProc)

	if ok := win.EnumDisplayMonitors(0, nil, callback, 0); !ok {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %w", syscall.GetLastError())
	}
	if len(state.list) == 0 {
		return nil, fmt.Errorf("no displays detected")
	}
	return state.list, nil
}

// screenDPI reads the logical pixel density of the desktop device context.
func screenDPI() (float64, float64) {
	hdc := win.GetDC(0)
	if hdc == 0 {
		return 96, 96
	}
	defer win.ReleaseDC(0, hdc)
	x := win.GetDeviceCaps(hdc, win.LOGPIXELSX)
	y := win.GetDeviceCaps(hdc, win.LOGPIXELSY)
	if x <= 0 || y <= 0 {
		return 96, 96
	}
	return float64(x), float64(y)
}

// enumState collects displays during enumeration.
type enumState struct {
	list  []Display
	index int
	dpiX  float64
	dpiY  float64
}

// enumProc collects one monitor per EnumDisplayMonitors callback.
func (s *enumState) enumProc(hMonitor win.HMONITOR, hdc win.HDC, rect *win.RECT, lparam uintptr) uintptr {
	var info win.MONITORINFO
	info.CbSize = uint32(unsafe.Sizeof(info))
	if !win.GetMonitorInfo(hMonitor, &info) {
		return 1
	}

	r := info.RcMonitor
	s.index++
	s.list = append(s.list, Display{
		Index:   s.index,
		X:       int(r.Left),
		Y:       int(r.Top),
		W:       int(r.Right - r.Left),
		H:       int(r.Bottom - r.Top),
		DPIX:    s.dpiX,
		DPIY:    s.dpiY,
		Primary: info.DwFlags&win.MONITORINFOF_PRIMARY != 0,
	})
	return 1
}
