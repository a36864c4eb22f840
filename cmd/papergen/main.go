package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"papergen/internal/export"
	"papergen/internal/extract"
	"papergen/internal/handler"
	appI18n "papergen/internal/i18n"
	"papergen/internal/llm"
	"papergen/internal/model"
	"papergen/internal/store"
	"papergen/internal/variant"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "papergen",
		Short: "AI exam paper generator with non-overlapping variants",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addLLMFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("llm-provider", "gemini", "LLM provider (gemini, openai)")
	f.String("llm-model", "", "Model name (provider default when empty)")
	f.String("llm-key", "", "API key (or set PAPERGEN_LLM_KEY)")
	f.String("llm-url", "", "Base URL for OpenAI-compatible endpoints")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "papergen.db", "SQLite database path")
	f.StringP("lang", "l", "en", "Message language (en, hi)")
	f.String("base-path", "", "URL prefix for sub-path deployments")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("allowed-origin", "http://localhost:5173", "CORS allowed origin for the web client")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	addLLMFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate paper variants from a syllabus file and export them",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("syllabus", "s", "", "Syllabus file (pdf, docx, or txt; required)")
	f.String("exam-type", "text", "Exam type (text, pdf)")
	f.IntP("variants", "n", 1, "Number of paper variants")
	f.String("subject", "", "Subject name (inferred from syllabus when empty)")
	f.String("branch", "", "Engineering branch")
	f.String("university", "", "University name")
	f.String("format", "both", "Export format (docx, pdf, both)")
	f.StringP("out-dir", "o", ".", "Output directory for exported papers")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	addLLMFlags(cmd)

	_ = cmd.MarkFlagRequired("syllabus")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PAPERGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("papergen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/papergen")
	v.AddConfigPath("/etc/papergen")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func newBuilder(ctx context.Context, v *viper.Viper) (*variant.Builder, error) {
	provider, err := llm.NewProvider(ctx, llm.Config{
		Provider: v.GetString("llm-provider"),
		Model:    v.GetString("llm-model"),
		APIKey:   v.GetString("llm-key"),
		BaseURL:  v.GetString("llm-url"),
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	slog.Info("LLM provider ready", "provider", v.GetString("llm-provider"), "model", provider.ModelID())
	return variant.New(llm.NewClient(provider)), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	builder, err := newBuilder(cmd.Context(), v)
	if err != nil {
		return err
	}

	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServerConfig{
		Addr:          v.GetString("addr"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		AllowedOrigin: v.GetString("allowed-origin"),
		Lang:          lang,
	}
	h := handler.New(db, builder, extract.New(), cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			h.Routes(sub)
		})
	} else {
		h.Routes(r)
	}

	slog.Info("starting server",
		"addr", cfg.Addr,
		"db", v.GetString("db"),
		"lang", lang,
		"base_path", basePath,
		"allowed_origin", cfg.AllowedOrigin,
	)
	return http.ListenAndServe(cfg.Addr, r)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()

	if err := appI18n.Init("en"); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	path := v.GetString("syllabus")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read syllabus: %w", err)
	}
	text, err := extract.New().Extract(ctx, path, data)
	if err != nil {
		return fmt.Errorf("extract syllabus text: %w", err)
	}

	builder, err := newBuilder(ctx, v)
	if err != nil {
		return err
	}

	subject := v.GetString("subject")
	if subject == "" {
		subject = llm.InferSubject(text)
	}
	papers, err := builder.Build(ctx, model.GenerationConfig{
		ExamType:         model.ExamType(v.GetString("exam-type")),
		NumberOfVariants: v.GetInt("variants"),
		SyllabusText:     text,
		Subject:          subject,
		Branch:           v.GetString("branch"),
		University:       v.GetString("university"),
	})
	if err != nil {
		return fmt.Errorf("build variants: %w", err)
	}

	format := strings.ToLower(v.GetString("format"))
	outDir := v.GetString("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, paper := range papers {
		if format == "docx" || format == "both" {
			if err := writeExport(outDir, export.FileName(paper, "docx"), paper, export.Word); err != nil {
				return err
			}
		}
		if format == "pdf" || format == "both" {
			if err := writeExport(outDir, export.FileName(paper, "pdf"), paper, export.PDF); err != nil {
				return err
			}
		}
	}
	slog.Info("generated papers", "variants", len(papers), "out_dir", outDir)
	return nil
}

func writeExport(dir, name string, paper model.Paper, render func(model.Paper) ([]byte, error)) error {
	data, err := render(paper)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	out := filepath.Join(dir, name)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	slog.Info("wrote paper", "file", out)
	return nil
}
