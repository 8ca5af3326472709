//go:build !llama

package engine

// This stub is compiled when the 'llama' build tag is NOT set, keeping
// default builds and CI CGO-free. The real engine lives in llama.go
// (tagged 'llama').

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

type llamaFactory struct{}

// NewLlamaFactory returns a Factory that fails fast: no mocked inference in
// production binaries built without CGO support.
func NewLlamaFactory() Factory { return llamaFactory{} }

func (llamaFactory) Open(modelPath string, opts Options) (Engine, error) {
	return nil, ErrNotBuilt
}
