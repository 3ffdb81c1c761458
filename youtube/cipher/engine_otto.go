package cipher

import (
	"github.com/robertkrimen/otto"
)

// OttoEngine runs scripts on github.com/robertkrimen/otto.
type OttoEngine struct {
	vm *otto.Otto
}

// NewOttoEngine returns an engine with an empty otto runtime.
func NewOttoEngine() *OttoEngine {
	return &OttoEngine{vm: otto.New()}
}

func (e *OttoEngine) Name() string { return EngineOtto }

func (e *OttoEngine) Run(src string) error {
	return guard(EngineOtto, "run", func() error {
		if _, err := e.vm.Run(src); err != nil {
			return NewError(ErrCodeJSParsingFailed, "failed to run script in otto", err.Error())
		}
		return nil
	})
}

func (e *OttoEngine) Call(fn string, arg string) (string, error) {
	var out string
	err := guard(EngineOtto, "call", func() error {
		value, err := e.vm.Get(fn)
		if err != nil || !value.IsFunction() {
			return NewError(ErrCodeJSExecutionFailed, "decipher function is not defined", fn)
		}
		result, err := value.Call(otto.UndefinedValue(), arg)
		if err != nil {
			return NewError(ErrCodeJSExecutionFailed, "failed to call decipher function", err.Error())
		}
		if !result.IsString() {
			return NewError(ErrCodeSignatureInvalid, "decipher function did not return a string", result.String())
		}
		out = result.String()
		return nil
	})
	return out, err
}
