package cipher

import (
	"github.com/dop251/goja"
)

// GojaEngine runs scripts on github.com/dop251/goja.
type GojaEngine struct {
	vm *goja.Runtime
}

// NewGojaEngine returns an engine with an empty goja runtime.
func NewGojaEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

func (e *GojaEngine) Name() string { return EngineGoja }

func (e *GojaEngine) Run(src string) error {
	return guard(EngineGoja, "run", func() error {
		if _, err := e.vm.RunString(src); err != nil {
			return NewError(ErrCodeJSParsingFailed, "failed to run script in goja", err.Error())
		}
		return nil
	})
}

func (e *GojaEngine) Call(fn string, arg string) (string, error) {
	var out string
	err := guard(EngineGoja, "call", func() error {
		call, ok := goja.AssertFunction(e.vm.Get(fn))
		if !ok {
			return NewError(ErrCodeJSExecutionFailed, "decipher function is not defined", fn)
		}
		result, err := call(goja.Undefined(), e.vm.ToValue(arg))
		if err != nil {
			return NewError(ErrCodeJSExecutionFailed, "failed to call decipher function", err.Error())
		}
		s, ok := result.Export().(string)
		if !ok {
			return NewError(ErrCodeSignatureInvalid, "decipher function did not return a string", result.String())
		}
		out = s
		return nil
	})
	return out, err
}
