package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConfigErrorString(t *testing.T) {
	err := &ConfigError{
		Op:        "core.CreateComponent",
		Component: "ContextConsumer",
		Err:       ErrNoProvider,
	}
	got := err.Error()
	want := "core.CreateComponent [config] ContextConsumer: no matching context provider"
	if got != want {
		t.Errorf("ConfigError.Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, ErrNoProvider) {
		t.Error("ConfigError should unwrap to ErrNoProvider")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConfig, "config"},
		{KindRender, "render"},
		{KindHandler, "handler"},
		{KindAsset, "asset"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", stderrors.New("x"), KindUnknown},
		{"config", &ConfigError{Op: "op", Err: ErrNoResolver}, KindConfig},
		{"render", &RenderError{Component: "C", Phase: PhaseRender}, KindRender},
		{"handler", &RenderError{Component: "C", Phase: PhaseEvent}, KindHandler},
		{"asset", &RenderError{Component: "C", Phase: PhaseAsset, Err: &AssetError{URLs: []string{"a"}, Err: stderrors.New("404")}}, KindAsset},
		{"wrapped config", fmt.Errorf("mount: %w", &ConfigError{Op: "op", Err: ErrNoProvider}), KindConfig},
		{"panic", &PanicError{Value: 1}, KindPanic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderErrorString(t *testing.T) {
	err := &RenderError{Component: "Counter", Phase: PhaseRender, Recovered: "nil map"}
	if got, want := err.Error(), "panic in Counter (render): nil map"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &RenderError{Component: "Counter", Phase: PhaseEvent, Err: stderrors.New("boom")}
	if got, want := err2.Error(), "error in Counter (event): boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err3 := &RenderError{Component: "Counter", Phase: PhaseMount}
	if got, want := err3.Error(), "unknown error in Counter (mount)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAssetErrorString(t *testing.T) {
	err := &AssetError{URLs: []string{"a.png", "b.png"}, Err: stderrors.New("not found")}
	if got, want := err.Error(), "load a.png, b.png: not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "render.Pump"
	if got, want := err.Error(), "panic in render.Pump: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func useHandler(t *testing.T, h ErrorHandler) {
	t.Helper()
	prev := SetHandler(h)
	t.Cleanup(func() { SetHandler(prev) })
}

func TestReportRenderError(t *testing.T) {
	var captured *RenderError
	useHandler(t, &testHandler{onRender: func(err *RenderError) { captured = err }})

	ReportRenderError(&RenderError{Component: "C", Phase: PhaseRender, Recovered: "x"})

	if captured == nil {
		t.Fatal("handler not called")
	}
	if captured.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestRecover(t *testing.T) {
	var reported, passed *PanicError
	useHandler(t, &testHandler{onPanic: func(err *PanicError) { reported = err }})

	func() {
		defer Recover("test.recover", func(p *PanicError) { passed = p })
		panic(42)
	}()

	if reported == nil || passed != reported {
		t.Fatalf("reported = %v, passed = %v; want the same PanicError", reported, passed)
	}
	if reported.Value != 42 || reported.Op != "test.recover" {
		t.Errorf("got Op=%q Value=%v", reported.Op, reported.Value)
	}
	if !strings.Contains(reported.StackTrace, "TestRecover") {
		t.Errorf("stack does not name the panicking test:\n%s", reported.StackTrace)
	}
}

func TestRecover_NoPanic(t *testing.T) {
	called := false
	useHandler(t, &testHandler{onPanic: func(*PanicError) { called = true }})

	func() {
		defer Recover("test.quiet", nil)
	}()
	if called {
		t.Error("handler called without a panic")
	}
}

func TestStack(t *testing.T) {
	stack := Stack(0)
	if !strings.Contains(stack, "errors.TestStack") {
		t.Errorf("Stack(0) should start at the caller, got:\n%s", stack)
	}
	if strings.Contains(stack, "errors.Stack\n") {
		t.Errorf("Stack(0) should omit itself, got:\n%s", stack)
	}
}

func TestSetHandler(t *testing.T) {
	custom := &testHandler{}
	prev := SetHandler(custom)
	t.Cleanup(func() { SetHandler(prev) })

	if Handler() != custom {
		t.Errorf("Handler() = %T, want the installed handler", Handler())
	}
	if got := SetHandler(nil); got != custom {
		t.Errorf("SetHandler returned %T, want the replaced handler", got)
	}
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) installed %T, want *LogHandler", Handler())
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestLogHandlerWritesThroughLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	h := &LogHandler{}
	h.HandleRenderError(&RenderError{Component: "Counter", Phase: PhaseRender, Err: stderrors.New("boom")})
	h.HandleFatal(&ConfigError{Op: "core.CreateComponent", Err: ErrNoResolver})

	out := buf.String()
	for _, want := range []string{"component failed", "component=Counter", "fatal render failure", "kind=config"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testHandler struct {
	onPanic  func(*PanicError)
	onRender func(*RenderError)
	onFatal  func(error)
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func (h *testHandler) HandleRenderError(err *RenderError) {
	if h.onRender != nil {
		h.onRender(err)
	}
}

func (h *testHandler) HandleFatal(err error) {
	if h.onFatal != nil {
		h.onFatal(err)
	}
}
