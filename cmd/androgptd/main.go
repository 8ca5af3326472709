package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yaser0004/AndroGPT/internal/config"
	"github.com/yaser0004/AndroGPT/internal/httpapi"
	"github.com/yaser0004/AndroGPT/internal/manager"
	"github.com/yaser0004/AndroGPT/internal/registry"
)

type serveOptions struct {
	addr         string
	configPath   string
	modelsDir    string
	defaultModel string
	contextSize  int
	threads      int
	gpuLayers    int
	maxTokens    int
	genTimeout   int64
	corsOrigins  string
	logLevel     string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the generation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", envOr("ANDROGPT_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.configPath, "config", os.Getenv("ANDROGPT_CONFIG"), "Optional config file (.yaml/.json/.toml)")
	f.StringVar(&opts.modelsDir, "models-dir", envOr("ANDROGPT_MODELS_DIR", "~/models/llm"), "Directory to scan for *.gguf model files")
	f.StringVar(&opts.defaultModel, "default-model", os.Getenv("ANDROGPT_DEFAULT_MODEL"), "Default model id when request omits model")
	f.IntVar(&opts.contextSize, "context-size", 0, "Context window in tokens (0=default)")
	f.IntVar(&opts.threads, "threads", 0, "Inference threads (0=runtime default)")
	f.IntVar(&opts.gpuLayers, "gpu-layers", 0, "Layers to offload to GPU")
	f.IntVar(&opts.maxTokens, "max-tokens", 0, "Default token budget per request (0=default)")
	f.Int64Var(&opts.genTimeout, "generate-timeout", 0, "Per-request generation timeout in seconds (0=off)")
	f.StringVar(&opts.corsOrigins, "cors-origins", os.Getenv("ANDROGPT_CORS_ORIGINS"), "Comma-separated allowed CORS origins (empty disables CORS)")
	f.StringVar(&opts.logLevel, "log-level", envOr("ANDROGPT_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	return cmd
}

func runServe(opts *serveOptions) error {
	logger := newLogger(opts.logLevel)

	// Config file fills whatever the flags left at their zero values.
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.Addr != "" {
			opts.addr = cfg.Addr
		}
		if cfg.ModelsDir != "" {
			opts.modelsDir = cfg.ModelsDir
		}
		if cfg.DefaultModel != "" && opts.defaultModel == "" {
			opts.defaultModel = cfg.DefaultModel
		}
		if cfg.ContextSize > 0 && opts.contextSize == 0 {
			opts.contextSize = cfg.ContextSize
		}
		if cfg.Threads > 0 && opts.threads == 0 {
			opts.threads = cfg.Threads
		}
		if cfg.GPULayers > 0 && opts.gpuLayers == 0 {
			opts.gpuLayers = cfg.GPULayers
		}
		if cfg.MaxTokens > 0 && opts.maxTokens == 0 {
			opts.maxTokens = cfg.MaxTokens
		}
	}

	reg, err := registry.LoadDir(opts.modelsDir)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:     reg,
		DefaultModel: opts.defaultModel,
		Logger:       &logger,
		ContextSize:  opts.contextSize,
		Threads:      opts.threads,
		GPULayers:    opts.gpuLayers,
		MaxTokens:    opts.maxTokens,
	})
	defer mgr.Close()

	httpapi.SetLogger(logger)
	httpapi.SetGenerateTimeoutSeconds(opts.genTimeout)
	if origins := splitCSV(opts.corsOrigins); len(origins) > 0 {
		httpapi.SetCORSOptions(true, origins,
			[]string{"GET", "POST", "OPTIONS"},
			[]string{"Content-Type", "X-Log-Level"})
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{Addr: opts.addr, Handler: httpapi.NewMux(mgr)}

	go func() {
		logger.Info().Str("addr", opts.addr).Str("models_dir", opts.modelsDir).Msg("androgptd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func newModelsCmd() *cobra.Command {
	var modelsDir string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List GGUF models found in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadDir(modelsDir)
			if err != nil {
				return err
			}
			for _, m := range reg {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", m.ID, m.Family, m.Quant, m.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelsDir, "models-dir", envOr("ANDROGPT_MODELS_DIR", "~/models/llm"), "Directory to scan for *.gguf model files")
	return cmd
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "androgptd",
		Short:         "Local LLM text generation daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newModelsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
