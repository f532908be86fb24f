// Package errors provides structured error handling for the render-kit engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindConfig indicates a misconfigured tree (missing provider, missing resolver).
	KindConfig
	// KindRender indicates a failure inside a component's Render.
	KindRender
	// KindHandler indicates a failure inside an event handler.
	KindHandler
	// KindAsset indicates a failed asset load.
	KindAsset
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindRender:
		return "render"
	case KindHandler:
		return "handler"
	case KindAsset:
		return "asset"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by ConfigError and friends.
var (
	ErrNoProvider = stderrors.New("no matching context provider")
	ErrNoResolver = stderrors.New("no resolver for element type")
	ErrNoSuspense = stderrors.New("component suspended outside a Suspense boundary")
	ErrUnmounted  = stderrors.New("component is not mounted")
	ErrClosed     = stderrors.New("render root is closed")
)

// ConfigError reports a fatal misconfiguration of the component tree.
// It is never routed to error boundaries.
type ConfigError struct {
	// Op is the operation that failed (e.g., "core.CreateComponent").
	Op string
	// Component is the type name of the component involved, if any.
	Component string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s [%s] %s: %v", e.Op, KindConfig, e.Component, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, KindConfig, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Phase names the lifecycle step in which a RenderError occurred.
type Phase string

const (
	PhaseRender Phase = "render"
	PhaseEvent  Phase = "event"
	PhaseMount  Phase = "mount"
	PhaseUpdate Phase = "update"
	PhaseAsset  Phase = "asset"
)

// RenderError represents a failure raised by component code: a Render call,
// an event handler, or an asset gate. It travels up the component tree
// looking for an error boundary.
type RenderError struct {
	// Component is the type name of the component that failed.
	Component string
	// Phase is where the failure happened.
	Phase Phase
	// Recovered is the panic value (nil for returned errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of a panic.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s (%s): %v", e.Component, e.Phase, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s (%s): %v", e.Component, e.Phase, e.Err)
	}
	return fmt.Sprintf("unknown error in %s (%s)", e.Component, e.Phase)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// AssetError reports a failed load of one or more asset URLs.
type AssetError struct {
	URLs []string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("load %s: %v", strings.Join(e.URLs, ", "), e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic outside of component code.
type PanicError struct {
	// Op is the operation that panicked (e.g., "render.Pump").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// KindOf classifies err by walking its wrap chain.
func KindOf(err error) ErrorKind {
	var (
		cfg   *ConfigError
		rnd   *RenderError
		asset *AssetError
		pnc   *PanicError
	)
	switch {
	case err == nil:
		return KindUnknown
	case stderrors.As(err, &cfg):
		return KindConfig
	case stderrors.As(err, &asset):
		return KindAsset
	case stderrors.As(err, &rnd):
		if rnd.Phase == PhaseEvent {
			return KindHandler
		}
		return KindRender
	case stderrors.As(err, &pnc):
		return KindPanic
	default:
		return KindUnknown
	}
}

// IsFatalConfig reports whether err is a configuration error.
func IsFatalConfig(err error) bool {
	var cfg *ConfigError
	return stderrors.As(err, &cfg)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandlePanic is called when a panic is recovered outside component code.
	HandlePanic(err *PanicError)
	// HandleRenderError is called when a component fails, whether or not a
	// boundary later catches the error.
	HandleRenderError(err *RenderError)
	// HandleFatal is called when an error escapes the top-level operation.
	HandleFatal(err error)
}
