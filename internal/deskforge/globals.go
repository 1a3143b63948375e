package deskforge

import (
	"runtime"
	"sync/atomic"

	"github.com/gookit/color"
)

// GLOBAL STATE
// We use a value of 1 for critical and 0 for non-critical/default.
// While critical (a package transaction is running) the first interrupt
// is blocked and only a second one forces exit.
var isCriticalAtomic atomic.Int32

// Global variables
var (
	Debug     bool
	LogFile   = "/var/log/deskforge.log"
	version   = "dev" // default version; overridden at build time
	arch      = runtime.GOARCH
	buildDate = "unknown" // overridden at build time
	// Global executors (declared, to be assigned in Main)
	SysExec *Executor
	TTYExec *Executor
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)
