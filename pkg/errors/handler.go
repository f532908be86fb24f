package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

type handlerBox struct{ h ErrorHandler }

var handlerPtr atomic.Pointer[handlerBox]

func init() {
	handlerPtr.Store(&handlerBox{&LogHandler{}})
}

// SetHandler installs h as the process-wide error handler and returns the
// one it replaces. Nil restores a quiet LogHandler.
func SetHandler(h ErrorHandler) (prev ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	return handlerPtr.Swap(&handlerBox{h}).h
}

// Handler returns the installed error handler.
func Handler() ErrorHandler {
	return handlerPtr.Load().h
}

// ReportPanic hands err to the installed handler, stamping it if needed.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

// ReportRenderError hands err to the installed handler, stamping it if
// needed.
func ReportRenderError(err *RenderError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleRenderError(err)
}

// ReportFatal hands an error that escaped a top-level operation to the
// installed handler.
func ReportFatal(err error) {
	if err != nil {
		Handler().HandleFatal(err)
	}
}

// Recover must be deferred directly. A recovered panic is reported as a
// PanicError tagged with op and then passed to onPanic, which may be nil.
//
//	defer errors.Recover("assets.fetch", func(p *errors.PanicError) { err = p })
func Recover(op string, onPanic func(*PanicError)) {
	r := recover()
	if r == nil {
		return
	}
	p := &PanicError{Op: op, Value: r, StackTrace: Stack(1)}
	ReportPanic(p)
	if onPanic != nil {
		onPanic(p)
	}
}

// Stack formats the calling goroutine's stack, omitting Stack itself and
// skip further frames.
func Stack(skip int) string {
	pcs := make([]uintptr, 32)
	pcs = pcs[:runtime.Callers(skip+2, pcs)]
	if len(pcs) == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return sb.String()
		}
	}
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}
