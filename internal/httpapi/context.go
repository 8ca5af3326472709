package httpapi

import (
	"context"
	"net/http"
	"time"
)

// serverBaseCtx is canceled on shutdown so in-flight generations stop
// instead of holding up the drain. Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// generationContext derives the context governing one generate request:
// done when the client disconnects, the server shuts down, or the
// configured generation timeout elapses. The returned stop func must be
// called when the handler ends.
func generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if genTimeout > 0 {
		ctx, cancel = context.WithTimeout(r.Context(), time.Duration(genTimeout)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(r.Context())
	}
	unhook := context.AfterFunc(serverBaseCtx, cancel)
	return ctx, func() {
		unhook()
		cancel()
	}
}
