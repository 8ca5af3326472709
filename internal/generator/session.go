// Package generator drives the token generation loop: tokenize, forward
// pass, sample, stop-condition checks, and fragment delivery through the
// streaming transcoder. One Session serves exactly one generate call and is
// never shared across concurrent requests; callers serialize access to the
// shared engine (see manager admission).
package generator

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaser0004/AndroGPT/internal/engine"
	"github.com/yaser0004/AndroGPT/internal/transcode"
)

// StopReason identifies why a session terminated.
type StopReason string

const (
	StopEOS           StopReason = "eos"
	StopMarker        StopReason = "stop_marker"
	StopTokenLimit    StopReason = "token_limit"
	StopCancelled     StopReason = "cancelled"
	StopDecodeFailure StopReason = "decode_failure"
)

// Sink receives streamed output in generation order on the calling
// goroutine. OnComplete is invoked exactly once per session, whatever the
// termination reason. Panics raised by a sink are caught and logged; they
// never abort the loop.
type Sink interface {
	OnFragment(units []uint16)
	OnComplete()
}

// Config assembles the collaborators for one session.
type Config struct {
	Engine      engine.Engine
	Sampler     engine.Sampler
	MaxTokens   int
	StopMarkers []string
	// Cancel is polled once per token. Optional; a session without a flag
	// simply cannot be cancelled.
	Cancel *CancelFlag
	Logger *zerolog.Logger
}

// Result summarizes a finished session. Units holds the full generated text
// as host code units, already truncated before any matched stop marker.
type Result struct {
	Units        []uint16
	Reason       StopReason
	PromptTokens int
	Decoded      int
	Duration     time.Duration
}

// Session is the mutable state of one generation request.
type Session struct {
	cfg     Config
	tr      transcode.Transcoder
	acc     []byte // accumulated output bytes, used for stop scanning
	emitted int    // prefix of acc already delivered (streaming mode)
	pos     int
	decoded int
}

// New validates the collaborators and builds a session.
func New(cfg Config) (*Session, error) {
	if cfg.Engine == nil {
		return nil, errors.New("generator: nil engine")
	}
	if cfg.Sampler == nil {
		return nil, errors.New("generator: nil sampler")
	}
	if cfg.Cancel == nil {
		cfg.Cancel = &CancelFlag{}
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	s := &Session{cfg: cfg}
	s.tr.OnError = func(err error, off int) {
		encodingErrorsTotal.Inc()
		cfg.Logger.Warn().Err(err).Int("offset", off).Msg("skipping malformed byte sequence")
	}
	return s, nil
}

// Generate runs the session in batch mode and returns the whole result,
// transcoded once at the end.
func (s *Session) Generate(prompt []byte) (Result, error) {
	return s.run(prompt, nil)
}

// Stream runs the session in streaming mode, delivering ready fragments to
// sink as they complete. The final flush drains any partial character still
// held in the transcoder; sink.OnComplete fires on every exit path.
func (s *Session) Stream(prompt []byte, sink Sink) (Result, error) {
	defer s.safeComplete(sink)
	emit := func(frag []byte) {
		units := s.tr.Transcode(frag)
		if len(units) > 0 {
			s.safeFragment(sink, units)
		}
	}
	res, err := s.run(prompt, emit)
	if units := s.tr.Flush(); len(units) > 0 {
		s.safeFragment(sink, units)
	}
	return res, err
}

// run is the state machine shared by both modes. When emit is nil the
// session buffers everything (batch mode).
func (s *Session) run(prompt []byte, emit func([]byte)) (Result, error) {
	start := time.Now()
	eng := s.cfg.Engine

	// The KV cache carries state from the previous session and must be
	// reset before the prompt's forward pass.
	eng.ClearCache()

	tokens, err := eng.Tokenize(prompt)
	if err != nil {
		return s.finish(start, StopDecodeFailure), &EngineFaultError{Op: "tokenize", Err: err}
	}
	if err := eng.Forward(tokens, 0); err != nil {
		return s.finish(start, StopDecodeFailure), &EngineFaultError{Op: "prompt forward pass", Err: err}
	}
	s.pos = len(tokens)

	ctxSize := eng.ContextSize()
	reason := StopTokenLimit
	var fault error

	// A sampled token forwards at position s.pos, so the loop must stop
	// before s.pos reaches the window; the runtime rejects batches at
	// position >= ContextSize.
	for s.pos < ctxSize && s.decoded < s.cfg.MaxTokens {
		if s.cfg.Cancel.Cancelled() {
			reason = StopCancelled
			break
		}

		tok := s.cfg.Sampler.Sample()
		if eng.IsEndOfGeneration(tok) {
			reason = StopEOS
			break
		}

		// An empty fragment is valid: it emits nothing but still
		// advances position and count.
		s.acc = append(s.acc, eng.TokenBytes(tok)...)

		if idx, marker, ok := findStop(string(s.acc), s.cfg.StopMarkers); ok {
			s.cfg.Logger.Debug().Str("marker", marker).Msg("stop marker matched")
			s.acc = s.acc[:idx]
			reason = StopMarker
			break
		}
		if emit != nil {
			s.emitReady(emit, false)
		}

		if err := eng.Forward([]engine.Token{tok}, s.pos); err != nil {
			fault = &EngineFaultError{Op: "forward pass", Err: err}
			reason = StopDecodeFailure
			break
		}
		s.pos++
		s.decoded++
	}

	if emit != nil {
		s.emitReady(emit, true)
	}
	res := s.finish(start, reason)
	res.PromptTokens = len(tokens)
	return res, fault
}

// emitReady hands un-delivered bytes to emit, unless they end in a possible
// stop-marker prefix that must stay held until the match resolves. final
// forces the held tail out at session end.
func (s *Session) emitReady(emit func([]byte), final bool) {
	held := s.acc[s.emitted:]
	if len(held) == 0 {
		return
	}
	if !final && containsStopSuffix(string(held), s.cfg.StopMarkers) {
		return
	}
	emit(held)
	s.emitted = len(s.acc)
}

func (s *Session) finish(start time.Time, reason StopReason) Result {
	dur := time.Since(start)
	tokensTotal.Add(float64(s.decoded))
	generationsTotal.WithLabelValues(string(reason)).Inc()
	generationDuration.Observe(dur.Seconds())

	// Whole-result transcode: one pass over the accumulated bytes with a
	// fresh transcoder, independent of the streaming remainder.
	var tr transcode.Transcoder
	tr.OnError = s.tr.OnError
	units := tr.Transcode(s.acc)
	units = append(units, tr.Flush()...)

	s.cfg.Logger.Info().
		Str("reason", string(reason)).
		Int("decoded", s.decoded).
		Dur("dur", dur).
		Msg("generation finished")

	return Result{Units: units, Reason: reason, Decoded: s.decoded, Duration: dur}
}

func (s *Session) safeFragment(sink Sink, units []uint16) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Logger.Error().Interface("panic", r).Msg("sink OnFragment panicked; continuing")
		}
	}()
	sink.OnFragment(units)
}

func (s *Session) safeComplete(sink Sink) {
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Logger.Error().Interface("panic", r).Msg("sink OnComplete panicked")
		}
	}()
	sink.OnComplete()
}
