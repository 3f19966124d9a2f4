// sahaj: English reading companion for Bangla speakers. Splits a passage into
// sentences and words, translates them and builds a vocabulary list.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sahaj-english/sahaj/analysis"
	"github.com/sahaj-english/sahaj/config"
	"github.com/sahaj-english/sahaj/extract"
	"github.com/sahaj-english/sahaj/i18n"
	"github.com/sahaj-english/sahaj/ocr"
	"github.com/sahaj-english/sahaj/provider"
	"github.com/sahaj-english/sahaj/segment"
	"github.com/sahaj-english/sahaj/server"
	"github.com/sahaj-english/sahaj/settings"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sahaj",
		Short: i18n.T("English reading companion for Bangla speakers"),
		Long: `sahaj: English reading companion for Bangla speakers.

Splits an English passage into sentences, translates each one and glosses
the words worth learning. Works without an account through the free
Google Translate endpoint, or with an AI provider for richer analysis.

Commands:
  segment     Show how a passage is split into sentences and words
  translate   Line-by-line translation with a vocabulary list
  analyze     Sentence breakdown or chunk analysis as JSON
  lookup      Look up single words
  ocr         Extract a passage from an image, HTML or Markdown file
  serve       Run the HTTP and websocket API
  providers   List translation providers
  prompts     Manage the prompt override file
  config      Manage .sahaj.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Directory containing .sahaj.yaml"))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Enable debug logging"))

	root.AddCommand(
		newSegmentCmd(),
		newTranslateCmd(),
		newAnalyzeCmd(),
		newLookupCmd(),
		newOCRCmd(),
		newServeCmd(),
		newProvidersCmd(),
		newPromptsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared flag sets
// ---------------------------------------------------------------------------

// pipelineFlags select and tune the provider. They override .sahaj.yaml and
// the environment.
type pipelineFlags struct {
	provider string
	apiKey   string
	model    string
	target   string
	proxy    string
	timeout  time.Duration
}

func (p *pipelineFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("pipeline", pflag.ContinueOnError)
	fs.StringVarP(&p.provider, "provider", "p", "", i18n.T("Provider ID (see 'sahaj providers')"))
	fs.StringVar(&p.apiKey, "api-key", "", i18n.T("API key (or SAHAJ_API_KEY env var)"))
	fs.StringVar(&p.model, "model", "", i18n.T("Model override for the selected provider"))
	fs.StringVar(&p.target, "target", "", i18n.T("Target language (default bn)"))
	fs.StringVar(&p.proxy, "proxy", "", i18n.T("HTTP/HTTPS proxy URL"))
	fs.DurationVar(&p.timeout, "timeout", 0, i18n.T("Request timeout (0 = provider default)"))
	return fs
}

func (p *pipelineFlags) apply(cfg *config.File) {
	if p.provider != "" {
		cfg.Provider = p.provider
	}
	if p.apiKey != "" {
		cfg.APIKey = p.apiKey
	}
	if p.target != "" {
		cfg.TargetLang = p.target
	}
	if p.proxy != "" {
		cfg.Proxy = p.proxy
	}
	if p.model == "" && p.timeout == 0 {
		return
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderOverride)
	}
	o := cfg.Providers[cfg.Provider]
	if p.model != "" {
		o.Model = p.model
	}
	if p.timeout > 0 {
		o.Timeout = p.timeout
	}
	cfg.Providers[cfg.Provider] = o
}

// inputFlags choose where the passage comes from.
type inputFlags struct {
	file     string
	ocrLangs []string
}

func (in *inputFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("input", pflag.ContinueOnError)
	fs.StringVarP(&in.file, "file", "f", "", i18n.T("Read the passage from a text, HTML, Markdown or image file"))
	fs.StringSliceVar(&in.ocrLangs, "ocr-lang", ocr.DefaultLanguages, i18n.T("Tesseract languages for image input"))
	return fs
}

// read returns the passage from --file, the arguments or stdin, in that
// order.
func (in *inputFlags) read(ctx context.Context, args []string, stdin io.Reader) (string, error) {
	if in.file != "" {
		return extract.FromFile(ctx, in.file, ocr.NewEngine(in.ocrLangs...))
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", errors.New(i18n.T("no passage given: pass text, --file or pipe it on stdin"))
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func registerProviderCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		all := provider.DefaultProviders()
		var out []string
		for _, id := range provider.SortedIDs(all) {
			out = append(out, string(id)+"\t"+all[id].Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, m := range provider.Modes {
			out = append(out, string(m))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

// ---------------------------------------------------------------------------
// Runtime helpers
// ---------------------------------------------------------------------------

// loadConfig reads .sahaj.yaml from --root, then the environment, then p.
func loadConfig(p *pipelineFlags) (*config.File, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if p != nil {
		p.apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger returns a console logger on stderr. One-shot commands stay
// quiet below fallback unless --verbose or LOG_LEVEL asks for more.
func newLogger(fallback zerolog.Level) zerolog.Logger {
	level := fallback
	if v := os.Getenv(config.EnvLogLevel); v != "" {
		if lvl, err := zerolog.ParseLevel(v); err == nil {
			level = lvl
		}
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

func buildService(p *pipelineFlags, fallback zerolog.Level) (*config.File, *analysis.Service, error) {
	cfg, err := loadConfig(p)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(fallback)
	svc, err := cfg.NewService(&logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

// interruptContext is cancelled on Ctrl-C.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			logWarning(i18n.T("Interrupted, stopping..."))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// progressPrinter draws one status line for all batch jobs. It returns nil
// when stderr is not a terminal.
func progressPrinter() func(analysis.Progress) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	var mu sync.Mutex
	jobs := make(map[string]int)
	return func(p analysis.Progress) {
		mu.Lock()
		defer mu.Unlock()
		if p.Total > 0 {
			jobs[p.Job] = p.Done * 100 / p.Total
		}
		names := make([]string, 0, len(jobs))
		for name := range jobs {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		for _, name := range names {
			fmt.Fprintf(&b, "  %s %s", name, progressBar(jobs[name], 16))
		}
		fmt.Fprint(os.Stderr, "\r"+b.String())
	}
}

func withProgress(svc *analysis.Service) (*analysis.Service, func()) {
	fn := progressPrinter()
	if fn == nil {
		return svc, func() {}
	}
	return svc.WithProgress(fn), func() { fmt.Fprintln(os.Stderr) }
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sahaj version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
			fmt.Printf("  ocr:       %v\n", ocr.Available())
			if dir, err := settings.DataDir(); err == nil {
				fmt.Printf("  data:      %s\n", dir)
			}
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// segment (offline: sentence and word splitting)
// ---------------------------------------------------------------------------

func newSegmentCmd() *cobra.Command {
	var (
		in      inputFlags
		words   bool
		asJSON  bool
		byLines bool
	)

	cmd := &cobra.Command{
		Use:   "segment [text...]",
		Short: i18n.T("Show how a passage is split into sentences and words"),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := in.read(cmd.Context(), args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runSegment(cmd.OutOrStdout(), text, words, byLines, asJSON)
		},
	}

	cmd.Flags().AddFlagSet(in.flagSet())
	cmd.Flags().BoolVarP(&words, "words", "w", false, i18n.T("List the distinct vocabulary words"))
	cmd.Flags().BoolVar(&byLines, "lines", false, i18n.T("Split on line breaks instead of sentence ends"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print JSON"))

	return cmd
}

func runSegment(w io.Writer, text string, words, byLines, asJSON bool) error {
	var units []string
	switch {
	case words:
		units = segment.Words(text)
	case byLines:
		units = segment.Lines(text)
	default:
		units = segment.Sentences(text)
	}

	if asJSON {
		if units == nil {
			units = []string{}
		}
		return printJSON(w, units)
	}
	for i, u := range units {
		fmt.Fprintf(w, "%3d  %s\n", i+1, u)
	}
	if words {
		logInfo(i18n.N("%d word", "%d words", len(units)), len(units))
	} else {
		logInfo(i18n.N("%d sentence", "%d sentences", len(units)), len(units))
	}
	return nil
}

// ---------------------------------------------------------------------------
// translate (pipe modes: reconciled lines + vocabulary)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		p      pipelineFlags
		in     inputFlags
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: i18n.T("Line-by-line translation with a vocabulary list"),
		Long: `Translate a passage sentence by sentence and gloss its vocabulary.

Examples:
  # Free, no account needed
  sahaj translate "I am learning English. It is very easy."

  # Through Groq, reading a web page
  sahaj translate --provider groq --api-key KEY --file lesson.html

  # From a photo of a textbook page (needs a tesseract build)
  sahaj translate --file page.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := provider.ParseMode(mode)
			if err != nil {
				return err
			}
			if !m.Pipe() {
				return fmt.Errorf(i18n.T("mode %q is not a translation mode; use 'sahaj analyze'"), m)
			}

			ctx, cancel := interruptContext()
			defer cancel()

			text, err := in.read(ctx, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, svc, err := buildService(&p, zerolog.WarnLevel)
			if err != nil {
				return err
			}
			svc, done := withProgress(svc)
			res, err := svc.Stable(ctx, analysis.Request{
				Text:       text,
				Provider:   provider.ID(cfg.Provider),
				Credential: cfg.APIKey,
				Mode:       m,
			})
			done()
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printStable(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().AddFlagSet(p.flagSet())
	cmd.Flags().AddFlagSet(in.flagSet())
	cmd.Flags().StringVarP(&mode, "mode", "m", string(provider.ModeStable), i18n.T("stable or translation"))
	cmd.Flags().BoolVar(&asJSON, "json", false, i18n.T("Print JSON"))
	registerProviderCompletion(cmd)

	return cmd
}

func printStable(w io.Writer, res *analysis.StableResult) {
	missing := 0
	for i, l := range res.Lines {
		fmt.Fprintf(w, "%3d  %s\n", i+1, l.Text)
		if l.Translated() {
			fmt.Fprintf(w, "     %s%s%s\n", colorGreen, *l.Translation, colorReset)
		} else {
			missing++
			fmt.Fprintf(w, "     %s%s%s\n", colorYellow, i18n.T("(no translation)"), colorReset)
		}
	}

	if len(res.VocabOrder) > 0 {
		fmt.Fprintf(w, "\n%s%s%s\n", colorBlue, i18n.T("Vocabulary"), colorReset)
		fmt.Fprintln(w, strings.Repeat("─", 40))
		width := 0
		for _, word := range res.VocabOrder {
			width = max(width, len(word))
		}
		for _, word := range res.VocabOrder {
			fmt.Fprintf(w, "  %-*s  %s\n", width, word, res.Vocab[word])
		}
	}

	if missing > 0 {
		logWarning(i18n.N("%d line has no translation", "%d lines have no translation", missing), missing)
	}
	if res.Dropped > 0 {
		logWarning(i18n.N("%d malformed line skipped", "%d malformed lines skipped", res.Dropped), res.Dropped)
	}
	logSuccess(i18n.T("Translated via %s"), res.Provider)
}

// ---------------------------------------------------------------------------
// analyze (JSON modes)
// ---------------------------------------------------------------------------

func newAnalyzeCmd() *cobra.Command {
	var (
		p    pipelineFlags
		in   inputFlags
		mode string
	)

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: i18n.T("Sentence breakdown or chunk analysis as JSON"),
		Long: `Analyze a passage and print the result as JSON.

Modes:
  analysis     literal and fluent translation plus vocabulary per sentence
  chunks       each sentence split into colour-coded meaning chunks
  stable       same output as 'sahaj translate --json'
  translation  AI translation through the pipe protocol`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := provider.ParseMode(mode)
			if err != nil {
				return err
			}

			ctx, cancel := interruptContext()
			defer cancel()

			text, err := in.read(ctx, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, svc, err := buildService(&p, zerolog.WarnLevel)
			if err != nil {
				return err
			}
			svc, done := withProgress(svc)
			out, err := svc.Run(ctx, analysis.Request{
				Text:       text,
				Provider:   provider.ID(cfg.Provider),
				Credential: cfg.APIKey,
				Mode:       m,
			})
			done()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().AddFlagSet(p.flagSet())
	cmd.Flags().AddFlagSet(in.flagSet())
	cmd.Flags().StringVarP(&mode, "mode", "m", string(provider.ModeAnalysis), i18n.T("analysis, chunks, stable or translation"))
	registerProviderCompletion(cmd)

	return cmd
}

// ---------------------------------------------------------------------------
// lookup (single words through the cache and free endpoint)
// ---------------------------------------------------------------------------

func newLookupCmd() *cobra.Command {
	var p pipelineFlags

	cmd := &cobra.Command{
		Use:   "lookup WORD...",
		Short: i18n.T("Look up single words"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			_, svc, err := buildService(&p, zerolog.WarnLevel)
			if err != nil {
				return err
			}
			return runLookup(ctx, cmd.OutOrStdout(), svc, args)
		},
	}

	fs := p.flagSet()
	cmd.Flags().AddFlag(fs.Lookup("target"))
	cmd.Flags().AddFlag(fs.Lookup("proxy"))

	return cmd
}

func runLookup(ctx context.Context, w io.Writer, svc *analysis.Service, words []string) error {
	found := 0
	for _, word := range words {
		meaning, ok := svc.Lookup(ctx, word)
		if !ok {
			logWarning(i18n.T("No meaning found for %q"), word)
			continue
		}
		found++
		fmt.Fprintf(w, "%s\t%s\n", word, meaning)
	}
	if found == 0 {
		return errors.New(i18n.T("no meanings found"))
	}
	return nil
}

// ---------------------------------------------------------------------------
// ocr (passage extraction)
// ---------------------------------------------------------------------------

func newOCRCmd() *cobra.Command {
	var langs []string

	cmd := &cobra.Command{
		Use:     "ocr FILE",
		Aliases: []string{"extract"},
		Short:   i18n.T("Extract a passage from an image, HTML or Markdown file"),
		Long: `Extract the readable passage from a file and print it.

Images are binarized and recognised with tesseract. Binaries built without
the "tesseract" build tag can still extract HTML, Markdown and text files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := interruptContext()
			defer cancel()

			path := args[0]
			if extract.DetectKind(path) == extract.KindImage && !ocr.Available() {
				logInfo(i18n.T("Rebuild with: go build -tags tesseract"))
			}
			text, err := extract.FromFile(ctx, path, ocr.NewEngine(langs...))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			n := len(segment.Sentences(text))
			logSuccess(i18n.N("Extracted %d sentence", "Extracted %d sentences", n), n)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&langs, "lang", ocr.DefaultLanguages, i18n.T("Tesseract languages"))

	return cmd
}

// ---------------------------------------------------------------------------
// serve (HTTP + websocket API)
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	var (
		p       pipelineFlags
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: i18n.T("Run the HTTP and websocket API"),
		Long: `Serve the analysis pipeline over HTTP.

Endpoints:
  GET  /healthz
  POST /api/analyze     {passage, provider, apiKey, mode}
  POST /api/translate   {text, provider, apiKey}
  GET  /api/lookup?word=WORD
  GET  /ws/analyze      websocket with progress events

The provider flags set the server's default target language and overrides;
each request names its own provider and key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(&p)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if len(origins) > 0 {
				cfg.Server.AllowedOrigins = origins
			}

			logger := newLogger(zerolog.InfoLevel)
			svc, err := cfg.NewService(&logger)
			if err != nil {
				return err
			}

			ctx, cancel := interruptContext()
			defer cancel()
			return runServer(ctx, cfg.Server, server.NewRouter(svc, &logger, cfg.Server.AllowedOrigins...))
		},
	}

	cmd.Flags().AddFlagSet(p.flagSet())
	cmd.Flags().StringVar(&addr, "addr", "", i18n.T("Listen address (or SAHAJ_ADDR, default :8080)"))
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, i18n.T("Allowed websocket origins (default: any)"))
	_ = cmd.Flags().MarkHidden("api-key")

	return cmd
}

func runServer(ctx context.Context, cfg config.Server, h http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logInfo(i18n.T("Listening on %s"), cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logSuccess(i18n.T("Server stopped"))
	return nil
}

// ---------------------------------------------------------------------------
// providers (list)
// ---------------------------------------------------------------------------

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "providers",
		Aliases: []string{"ls"},
		Short:   i18n.T("List translation providers"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			printProviders(os.Stderr, cfg)
			return nil
		},
	}
}

func printProviders(w io.Writer, cfg *config.File) {
	all := cfg.Descriptors()

	fmt.Fprintf(w, "\n%s%s%s\n", colorBlue, i18n.T("Providers"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, id := range provider.SortedIDs(all) {
		d := all[id]
		marker := "  "
		if string(id) == cfg.Provider {
			marker = colorGreen + "* " + colorReset
		}
		access := colorGreen + i18n.T("free") + colorReset
		if d.RequiresCredential {
			access = colorYellow + i18n.T("API key") + colorReset
		}
		fmt.Fprintf(w, "%s%-18s %-24s %s\n", marker, id, d.Name, access)
		if d.Model != "" {
			fmt.Fprintf(w, "  %18s model: %s\n", "", d.Model)
		}
	}

	fmt.Fprintf(w, "\n  %s%s%s\n", colorYellow, i18n.T("Environment Variables"), colorReset)
	if cfg.APIKey != "" {
		fmt.Fprintf(w, "  %s: %s%s%s\n", config.EnvAPIKey, colorGreen, settings.MaskKey(cfg.APIKey), colorReset)
	} else {
		fmt.Fprintf(w, "  %s: %s%s%s\n", config.EnvAPIKey, colorRed, i18n.T("not set"), colorReset)
	}
	fmt.Fprintln(w)
}

// ---------------------------------------------------------------------------
// prompts (override file)
// ---------------------------------------------------------------------------

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: i18n.T("Manage the prompt override file"),
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("Write the built-in prompts to an editable file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			path, err := cfg.PromptsPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), path)
			}
			if cfg.PromptsFile == "" {
				if _, err := settings.EnsureDataDir(); err != nil {
					return err
				}
			}
			if err := provider.WriteDefaultPrompts(path); err != nil {
				return err
			}
			logSuccess(i18n.T("Wrote %s"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, i18n.T("Overwrite an existing file"))

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: i18n.T("Print the prompt override file path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			path, err := cfg.PromptsPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

// ---------------------------------------------------------------------------
// config (.sahaj.yaml)
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("Manage .sahaj.yaml"),
	}

	var (
		p     pipelineFlags
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("Write a .sahaj.yaml with the defaults"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			p.apply(cfg)
			cfg.APIKey = ""
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runConfigInit(cfg, force)
		},
	}
	fs := p.flagSet()
	initCmd.Flags().AddFlag(fs.Lookup("provider"))
	initCmd.Flags().AddFlag(fs.Lookup("target"))
	initCmd.Flags().AddFlag(fs.Lookup("proxy"))
	initCmd.Flags().BoolVar(&force, "force", false, i18n.T("Overwrite an existing file"))

	showCmd := &cobra.Command{
		Use:   "show",
		Short: i18n.T("Print the effective configuration"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(nil)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runConfigInit(cfg *config.File, force bool) error {
	path := filepath.Join(rootDir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), path)
	}
	path, err := cfg.Save(rootDir)
	if err != nil {
		return err
	}
	logSuccess(i18n.T("Wrote %s"), path)
	return nil
}
