package cipher

import (
	"fmt"
	"strings"
)

// Engine is an isolated script context. Implementations are not safe for
// concurrent use; Decipherer serializes access.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string
	// Run evaluates src in the context.
	Run(src string) error
	// Call invokes the global function fn with one string argument and
	// returns its result, failing when the result is not a string.
	Call(fn string, arg string) (string, error)
}

// Engine names accepted by NewEngine.
const (
	EngineOtto = "otto"
	EngineGoja = "goja"
)

// NewEngine returns a fresh engine by name. An empty name selects otto.
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineOtto:
		return NewOttoEngine(), nil
	case EngineGoja:
		return NewGojaEngine(), nil
	}
	return nil, fmt.Errorf("unknown js engine %q", name)
}

// EngineFactory returns a constructor for the named engine, validating the
// name once.
func EngineFactory(name string) (func() Engine, error) {
	if _, err := NewEngine(name); err != nil {
		return nil, err
	}
	return func() Engine {
		e, _ := NewEngine(name)
		return e
	}, nil
}

// guard runs fn and turns a panic inside the engine into an error.
func guard(engine, stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrCodeJSExecutionFailed, fmt.Sprintf("%s panicked during %s", engine, stage), fmt.Sprint(r))
		}
	}()
	return fn()
}
