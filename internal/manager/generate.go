package manager

import (
	"context"
	"encoding/json"
	"io"

	"github.com/yaser0004/AndroGPT/internal/engine"
	"github.com/yaser0004/AndroGPT/internal/generator"
	"github.com/yaser0004/AndroGPT/internal/transcode"
	"github.com/yaser0004/AndroGPT/pkg/types"
)

// Generate centralizes generation behavior. It ensures the engine is loaded,
// runs one session inside the admission region, and writes the result to w:
// NDJSON token lines plus a final done line in streaming mode, or a single
// JSON object otherwise. Engine faults mid-session are reported in the final
// payload (finish_reason=decode_failure), never as a transport error.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error {
	modelID := req.Model
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			return ErrModelNotFound("(unspecified)")
		}
	}
	// Admission: FIFO queue, single in-flight session. The engine swap
	// happens inside the same admission region as the session, so the
	// model checked here is the model that serves the request.
	release, err := m.beginGeneration(ctx, modelID)
	if err != nil {
		return err
	}
	defer release()

	if err := m.ensureLoadedAdmitted(modelID); err != nil {
		return err
	}

	m.mu.RLock()
	eng := m.eng
	m.mu.RUnlock()
	if eng == nil {
		return notLoadedError{}
	}

	sampler, err := eng.NewSampler(samplingParams(req))
	if err != nil {
		return ErrDependencyUnavailable("init sampler: " + err.Error())
	}
	defer sampler.Close()

	stop := req.Stop
	if len(stop) == 0 {
		stop = generator.DefaultStopMarkers
	}
	budget := req.MaxTokens
	if budget <= 0 {
		budget = m.maxTokens
	}

	flag := &generator.CancelFlag{}
	unbind := flag.Bind(ctx)
	defer unbind()
	m.setActive(flag)
	defer m.clearActive(flag)

	sess, err := generator.New(generator.Config{
		Engine:      eng,
		Sampler:     sampler,
		MaxTokens:   budget,
		StopMarkers: stop,
		Cancel:      flag,
		Logger:      m.logger,
	})
	if err != nil {
		return err
	}

	// The prompt crosses the same sanitize path the UTF-16 host uses:
	// host code units in, engine bytes out.
	prompt := transcode.SanitizeUTF16(transcode.EncodeUTF16(req.Prompt))

	var res generator.Result
	if req.Stream {
		res, err = sess.Stream(prompt, &ndjsonSink{w: w, flush: flush})
	} else {
		res, err = sess.Generate(prompt)
	}
	if err != nil && !generator.IsEngineFault(err) {
		return err
	}
	if err != nil {
		m.mu.Lock()
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.logger.Error().Err(err).Msg("generation terminated by engine fault")
	}

	final := types.GenerateFinal{
		Done:         true,
		Content:      transcode.DecodeUTF16String(res.Units),
		FinishReason: string(res.Reason),
		Usage: types.Usage{
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.Decoded,
			TotalTokens:      res.PromptTokens + res.Decoded,
		},
	}
	jb, _ := json.Marshal(final)
	if _, err := w.Write(append(jb, '\n')); err != nil {
		return err
	}
	if flush != nil {
		flush()
	}
	return nil
}

func samplingParams(req types.GenerateRequest) engine.Sampling {
	p := engine.Sampling{
		Temperature: float32(req.Temperature),
		TopK:        req.TopK,
		TopP:        float32(req.TopP),
		Seed:        uint32(req.Seed),
	}
	if p.Temperature <= 0 {
		p.Temperature = 0.8
	}
	if p.TopK <= 0 {
		p.TopK = 40
	}
	if p.TopP <= 0 {
		p.TopP = 0.95
	}
	return p
}

// ndjsonSink bridges session fragments to NDJSON token lines.
type ndjsonSink struct {
	w     io.Writer
	flush func()
}

func (s *ndjsonSink) OnFragment(units []uint16) {
	type tokenMsg struct {
		Token string `json:"token"`
	}
	jb, err := json.Marshal(tokenMsg{Token: transcode.DecodeUTF16String(units)})
	if err != nil {
		return
	}
	if _, err := s.w.Write(append(jb, '\n')); err != nil {
		// Writer failure is delivery-side; the session keeps its
		// best-effort contract and carries on.
		return
	}
	if s.flush != nil {
		s.flush()
	}
}

func (s *ndjsonSink) OnComplete() {}
