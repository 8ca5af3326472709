package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yaser0004/AndroGPT/internal/engine"
	"github.com/yaser0004/AndroGPT/internal/httpapi"
	"github.com/yaser0004/AndroGPT/internal/manager"
	"github.com/yaser0004/AndroGPT/internal/registry"
)

// createTempModelsDir creates a temporary directory populated with empty .gguf
// files and returns the directory path and the list of model IDs.
func createTempModelsDir(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	ids := make([]string, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
		id := n
		if ext := filepath.Ext(n); ext != "" {
			id = n[:len(n)-len(ext)]
		}
		ids = append(ids, id)
	}
	return dir, ids
}

// fakeEngine emits a fixed number of word tokens and then an EOS token. An
// optional per-forward delay simulates a slow runtime for backpressure tests.
type fakeEngine struct {
	words        []string
	forwardDelay time.Duration
	sampled      atomic.Int32
}

const fakeEOS engine.Token = 9999

func (e *fakeEngine) Tokenize(prompt []byte) ([]engine.Token, error) {
	toks := make([]engine.Token, len(prompt))
	for i := range prompt {
		toks[i] = engine.Token(i)
	}
	return toks, nil
}

func (e *fakeEngine) Forward(batch []engine.Token, pos int) error {
	if e.forwardDelay > 0 {
		time.Sleep(e.forwardDelay)
	}
	return nil
}

func (e *fakeEngine) IsEndOfGeneration(t engine.Token) bool { return t == fakeEOS }

func (e *fakeEngine) TokenBytes(t engine.Token) []byte {
	i := int(t)
	if i < 0 || i >= len(e.words) {
		return nil
	}
	return []byte(e.words[i])
}

func (e *fakeEngine) ContextSize() int { return 2048 }
func (e *fakeEngine) ClearCache()      {}

func (e *fakeEngine) NewSampler(p engine.Sampling) (engine.Sampler, error) {
	return &fakeSampler{eng: e}, nil
}

func (e *fakeEngine) Info() engine.Info {
	return engine.Info{Description: "fake model", VocabSize: 32000, ContextSize: 2048, EmbeddingDim: 4096}
}

func (e *fakeEngine) Close() error { return nil }

type fakeSampler struct{ eng *fakeEngine }

func (s *fakeSampler) Sample() engine.Token {
	n := s.eng.sampled.Add(1)
	if int(n) > len(s.eng.words) {
		return fakeEOS
	}
	return engine.Token(n - 1)
}

func (s *fakeSampler) Close() {}

type fakeFactory struct {
	forwardDelay time.Duration
}

func (f *fakeFactory) Open(path string, opts engine.Options) (engine.Engine, error) {
	return &fakeEngine{words: []string{"blue ", "waves ", "crash"}, forwardDelay: f.forwardDelay}, nil
}

// newServerForDirWithConfig scans modelsDir and starts a test server around a
// manager built from cfg.
func newServerForDirWithConfig(t *testing.T, modelsDir string, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(modelsDir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	cfg.Registry = reg
	mgr := manager.NewWithConfig(cfg)
	t.Cleanup(func() { _ = mgr.Close() })
	mux := httpapi.NewMux(mgr)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
