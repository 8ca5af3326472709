//go:build llama

package engine

// In-process llama.cpp engine. Linked against libllama with an $ORIGIN rpath
// so the runtime loader finds libllama.so next to the built binary (./bin).

/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
#cgo CFLAGS: -I${SRCDIR}/../../bin/include
#include <stdlib.h>
#include "llama.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

var backendOnce sync.Once

type llamaFactory struct{}

// NewLlamaFactory returns a Factory backed by in-process llama.cpp.
func NewLlamaFactory() Factory { return llamaFactory{} }

type llamaEngine struct {
	model *C.struct_llama_model
	ctx   *C.struct_llama_context
	vocab *C.struct_llama_vocab
}

func (llamaFactory) Open(modelPath string, opts Options) (Engine, error) {
	if modelPath == "" {
		return nil, errors.New("model path is empty")
	}
	backendOnce.Do(func() {
		C.llama_backend_init()
	})

	cPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cPath))

	mp := C.llama_model_default_params()
	if opts.GPULayers > 0 {
		mp.n_gpu_layers = C.int32_t(opts.GPULayers)
	}
	model := C.llama_model_load_from_file(cPath, mp)
	if model == nil {
		return nil, fmt.Errorf("load model: %s", modelPath)
	}

	cp := C.llama_context_default_params()
	if opts.ContextSize > 0 {
		cp.n_ctx = C.uint32_t(opts.ContextSize)
	}
	if opts.Threads > 0 {
		cp.n_threads = C.int32_t(opts.Threads)
		cp.n_threads_batch = C.int32_t(opts.Threads)
	}
	ctx := C.llama_init_from_model(model, cp)
	if ctx == nil {
		C.llama_model_free(model)
		return nil, errors.New("create llama context")
	}

	return &llamaEngine{
		model: model,
		ctx:   ctx,
		vocab: C.llama_model_get_vocab(model),
	}, nil
}

func (e *llamaEngine) Tokenize(prompt []byte) ([]Token, error) {
	if len(prompt) == 0 {
		return nil, errors.New("empty prompt")
	}
	text := (*C.char)(unsafe.Pointer(&prompt[0]))
	// First pass with a nil buffer returns the negated token count.
	n := C.llama_tokenize(e.vocab, text, C.int32_t(len(prompt)), nil, 0, true, true)
	if n >= 0 {
		return nil, errors.New("tokenize: unexpected count")
	}
	buf := make([]C.llama_token, -n)
	got := C.llama_tokenize(e.vocab, text, C.int32_t(len(prompt)),
		&buf[0], C.int32_t(len(buf)), true, true)
	if got < 0 {
		return nil, errors.New("tokenize failed")
	}
	out := make([]Token, got)
	for i := range out {
		out[i] = Token(buf[i])
	}
	return out, nil
}

func (e *llamaEngine) Forward(batch []Token, pos int) error {
	if len(batch) == 0 {
		return errors.New("empty batch")
	}
	toks := make([]C.llama_token, len(batch))
	for i, t := range batch {
		toks[i] = C.llama_token(t)
	}
	b := C.llama_batch_get_one(&toks[0], C.int32_t(len(toks)))
	if rc := C.llama_decode(e.ctx, b); rc != 0 {
		return fmt.Errorf("llama_decode at position %d: result %d", pos, int(rc))
	}
	return nil
}

func (e *llamaEngine) IsEndOfGeneration(t Token) bool {
	return bool(C.llama_vocab_is_eog(e.vocab, C.llama_token(t)))
}

func (e *llamaEngine) TokenBytes(t Token) []byte {
	var buf [256]C.char
	n := C.llama_token_to_piece(e.vocab, C.llama_token(t), &buf[0], C.int32_t(len(buf)), 0, true)
	if n <= 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(&buf[0]), n)
}

func (e *llamaEngine) ContextSize() int {
	return int(C.llama_n_ctx(e.ctx))
}

func (e *llamaEngine) ClearCache() {
	mem := C.llama_get_memory(e.ctx)
	C.llama_memory_clear(mem, false)
}

func (e *llamaEngine) NewSampler(p Sampling) (Sampler, error) {
	sp := C.llama_sampler_chain_default_params()
	chain := C.llama_sampler_chain_init(sp)
	if chain == nil {
		return nil, errors.New("init sampler chain")
	}
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_top_k(C.int32_t(p.TopK)))
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_top_p(C.float(p.TopP), 1))
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_temp(C.float(p.Temperature)))
	seed := p.Seed
	if seed == 0 {
		seed = C.LLAMA_DEFAULT_SEED
	}
	C.llama_sampler_chain_add(chain, C.llama_sampler_init_dist(C.uint32_t(seed)))
	return &llamaSampler{chain: chain, eng: e}, nil
}

func (e *llamaEngine) Info() Info {
	var desc [256]C.char
	C.llama_model_desc(e.model, &desc[0], C.size_t(len(desc)))
	return Info{
		Description:  C.GoString(&desc[0]),
		VocabSize:    int(C.llama_vocab_n_tokens(e.vocab)),
		ContextTrain: int(C.llama_model_n_ctx_train(e.model)),
		ContextSize:  e.ContextSize(),
		EmbeddingDim: int(C.llama_model_n_embd(e.model)),
	}
}

func (e *llamaEngine) Close() error {
	if e.ctx != nil {
		C.llama_free(e.ctx)
		e.ctx = nil
	}
	if e.model != nil {
		C.llama_model_free(e.model)
		e.model = nil
	}
	return nil
}

type llamaSampler struct {
	chain *C.struct_llama_sampler
	eng   *llamaEngine
}

func (s *llamaSampler) Sample() Token {
	return Token(C.llama_sampler_sample(s.chain, s.eng.ctx, -1))
}

func (s *llamaSampler) Close() {
	if s.chain != nil {
		C.llama_sampler_free(s.chain)
		s.chain = nil
	}
}
