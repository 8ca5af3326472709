package generator

// EngineFaultError reports a tokenize or forward-pass failure. It terminates
// the current session only; it is never retried automatically.
type EngineFaultError struct {
	Op  string
	Err error
}

func (e *EngineFaultError) Error() string { return "engine fault during " + e.Op + ": " + e.Err.Error() }

func (e *EngineFaultError) Unwrap() error { return e.Err }

// IsEngineFault reports whether err is a fatal engine failure.
func IsEngineFault(err error) bool {
	_, ok := err.(*EngineFaultError)
	return ok
}
