package cipher

import (
	"strconv"
	"strings"
	"sync"

	"github.com/ytget/ytcore/internal/logger"
)

// State is the lifecycle of a Decipherer.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Decipherer owns one Engine loaded with the operations of one player script.
// Calls are serialized because engines are not reentrant.
type Decipherer struct {
	mu      sync.Mutex
	engine  Engine
	ops     Operations
	state   State
	initErr error
	metrics *Metrics
}

// NewDecipherer wraps engine. The engine must not be shared.
func NewDecipherer(engine Engine) *Decipherer {
	return &Decipherer{engine: engine}
}

// State returns the current lifecycle state.
func (d *Decipherer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Operations returns the operations the decipherer was initialized with.
func (d *Decipherer) Operations() Operations {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ops
}

// Initialize loads the helper object and then the decipher function into the
// engine. The function ends up as a global under its own name. It is wrapped
// in a scope holding the helper so that a helper sharing the function's name
// stays reachable from the function body.
func (d *Decipherer) Initialize(ops Operations) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateUninitialized {
		return NewError(ErrCodeNotReady, "decipherer already initialized", d.state.String())
	}
	if d.engine == nil || ops.FunctionName == "" || strings.TrimSpace(ops.Body) == "" {
		d.fail(NewError(ErrCodeNotReady, "nothing to load", ops.FunctionName))
		return d.initErr
	}
	if err := d.engine.Run(loadProgram(ops)); err != nil {
		d.fail(err)
		return err
	}
	d.ops = ops
	d.state = StateReady
	logger.WithComponent(logger.ComponentCipher).Debug("Decipherer ready", map[string]interface{}{
		"engine":   d.engine.Name(),
		"function": ops.FunctionName,
		"helper":   ops.HelperName,
	})
	return nil
}

func (d *Decipherer) fail(err error) {
	d.state = StateFailed
	d.initErr = err
	logger.WithComponent(logger.ComponentCipher).Warn("Decipherer initialization failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// loadProgram builds the script Initialize evaluates.
func loadProgram(ops Operations) string {
	var b strings.Builder
	b.WriteString("(function (g) {\n")
	if ops.HelperSource != "" {
		b.WriteString(ops.HelperSource)
		b.WriteString("\n")
	}
	b.WriteString("g[")
	b.WriteString(strconv.Quote(ops.FunctionName))
	b.WriteString("] = function (")
	b.WriteString(ops.Params)
	b.WriteString(") {")
	b.WriteString(ops.Body)
	b.WriteString("};\n})(this);")
	return b.String()
}

// Decipher runs the decipher function on an encrypted signature. Any engine
// failure, including a non-string result, is returned as an *Error.
func (d *Decipherer) Decipher(signature string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateReady {
		d.metrics.observeDecipher(resultFailed)
		return "", NewError(ErrCodeNotReady, "decipherer is not ready", d.state.String())
	}
	out, err := d.engine.Call(d.ops.FunctionName, signature)
	if err != nil {
		d.metrics.observeDecipher(resultFailed)
		return "", err
	}
	d.metrics.observeDecipher(resultOK)
	return out, nil
}

// Resolve deciphers a raw signatureCipher value into a signed stream URL.
func (d *Decipherer) Resolve(rawCipher string) (string, error) {
	sc, err := ParseSignatureCipher(rawCipher)
	if err != nil {
		return "", err
	}
	sig, err := d.Decipher(sc.Signature)
	if err != nil {
		return "", err
	}
	return sc.SignedURL(sig)
}
