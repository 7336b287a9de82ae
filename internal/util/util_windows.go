//go:build windows

package util

import (
	"log/slog"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32       = windows.NewLazySystemDLL("kernel32.dll")
	user32         = windows.NewLazySystemDLL("user32.dll")
	getConsoleWnd  = kernel32.NewProc("GetConsoleWindow")
	freeConsole    = kernel32.NewProc("FreeConsole")
	showWindowProc = user32.NewProc("ShowWindow")
)

// IsRunFromGUI reports whether padlink has no console of its own or was
// double clicked in Explorer.
func IsRunFromGUI() bool {
	if consoleWindow() == 0 {
		return true
	}
	parent := parentImage()
	slog.Debug("parent process", "image", parent)
	return strings.EqualFold(parent, "explorer.exe")
}

// HideConsoleWindow detaches from the console Explorer opened for us.
func HideConsoleWindow() {
	hwnd := consoleWindow()
	if hwnd == 0 {
		return
	}
	_, _, _ = showWindowProc.Call(hwnd, windows.SW_HIDE)
	_, _, _ = freeConsole.Call()
}

func consoleWindow() uintptr {
	hwnd, _, _ := getConsoleWnd.Call()
	return hwnd
}

type process struct {
	parent uint32
	image  string
}

// parentImage returns the executable name of our parent process, or "" when
// it has already exited.
func parentImage() string {
	procs, err := processTable()
	if err != nil {
		slog.Debug("process snapshot failed", "error", err)
		return ""
	}
	self, ok := procs[uint32(os.Getpid())]
	if !ok {
		return ""
	}
	return procs[self.parent].image
}

func processTable() (map[uint32]process, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	entry := windows.ProcessEntry32{Size: uint32(unsafe.Sizeof(windows.ProcessEntry32{}))}
	procs := make(map[uint32]process)
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		procs[entry.ProcessID] = process{
			parent: entry.ParentProcessID,
			image:  windows.UTF16ToString(entry.ExeFile[:]),
		}
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return nil, err
	}
	return procs, nil
}
