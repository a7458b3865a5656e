// Package main provides the CLI entrypoint for suuji.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/suuji/internal/browseui"
	"github.com/verte-zerg/suuji/internal/catalog"
	"github.com/verte-zerg/suuji/internal/config"
	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
	"github.com/verte-zerg/suuji/internal/numeral"
	"github.com/verte-zerg/suuji/internal/playback"
	"github.com/verte-zerg/suuji/internal/pricelist"
	"github.com/verte-zerg/suuji/internal/quiz"
	"github.com/verte-zerg/suuji/internal/speech"
	"github.com/verte-zerg/suuji/internal/store"
	"github.com/verte-zerg/suuji/internal/tui"
)

const (
	defaultCatalogStart = 0
	defaultCatalogEnd   = 100_000
	defaultPageSize     = 10
	defaultPool         = "default"
	defaultRate         = 1.0
	defaultLogLevel     = "warn"
)

var (
	speechMute    bool
	speechCommand string
	speechVoice   string
	speechRate    float64
	logLevel      string

	readAlphabet string
	readSpeak    bool

	catalogStart int
	catalogEnd   int
	catalogSize  int
	catalogSpeak bool

	quizPool      string
	quizMaxDigits int
	quizNoAuto    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "suuji",
		Short:         "Japanese number reading trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&speechMute, "mute", false, "do not use a speech synthesizer")
	flags.StringVar(&speechCommand, "synth", "", "speech synthesizer command (say, espeak-ng, espeak)")
	flags.StringVar(&speechVoice, "voice", "", "synthesizer voice")
	flags.Float64Var(&speechRate, "rate", defaultRate, "speech rate multiplier")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	addQuizFlags(rootCmd)

	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newPoolCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// settings is the merged result of config file and flags.
type settings struct {
	cfg      model.Config
	logLevel string
	logFile  string
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "start", &catalogStart, fileCfg.Catalog.Start)
	applyIntConfig(cmd, "end", &catalogEnd, fileCfg.Catalog.End)
	applyIntConfig(cmd, "size", &catalogSize, fileCfg.Catalog.PageSize)
	applyStringConfig(cmd, "pool", &quizPool, fileCfg.Quiz.Pool)
	applyIntConfig(cmd, "max-digits", &quizMaxDigits, fileCfg.Quiz.MaxDigits)
	applyStringConfig(cmd, "synth", &speechCommand, fileCfg.Speech.Command)
	applyStringConfig(cmd, "voice", &speechVoice, fileCfg.Speech.Voice)
	applyFloatConfig(cmd, "rate", &speechRate, fileCfg.Speech.Rate)
	applyBoolConfig(cmd, "mute", &speechMute, fileCfg.Speech.Mute)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	s := settings{
		cfg: model.Config{
			CatalogStart: catalogStart,
			CatalogEnd:   catalogEnd,
			PageSize:     catalogSize,
			Pool:         quizPool,
			MaxDigits:    quizMaxDigits,
			Speech: model.SpeechConfig{
				Command: speechCommand,
				Voice:   speechVoice,
				Rate:    speechRate,
				Mute:    speechMute,
			},
		},
		logLevel: logLevel,
	}
	if fileCfg.Log.File != nil {
		s.logFile = *fileCfg.Log.File
	}
	if err := validateConfig(s.cfg); err != nil {
		return settings{}, err
	}
	return s, nil
}

// newLogger logs to stderr for line-oriented commands. Full-screen commands log to a
// file so the alternate screen stays intact.
func (s settings) newLogger(fullscreen bool) (*logger.Logger, error) {
	path := s.logFile
	if fullscreen && path == "" {
		path = config.DefaultLogPath()
	}
	log, err := logger.New(s.logLevel, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

func (s settings) speechOptions(a model.Alphabet) speech.Options {
	return speech.Options{Alphabet: a, Rate: s.cfg.Speech.Rate, Voice: s.cfg.Speech.Voice}
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <number>...",
		Short: "Print the Japanese reading of numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReadCmd,
	}
	cmd.Flags().StringVar(&readAlphabet, "alphabet", "both", "kana, romaji or both")
	cmd.Flags().BoolVar(&readSpeak, "speak", false, "speak the readings")
	return cmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	columns, err := readColumns(readAlphabet)
	if err != nil {
		return err
	}

	entries := make([]model.Entry, 0, len(args))
	for _, arg := range args {
		n, err := numeral.ParseDigits(arg)
		if err != nil {
			return fmt.Errorf("failed to parse %q: %w", arg, err)
		}
		kana, romaji, err := numeral.Readings(n)
		if err != nil {
			return err
		}
		entries = append(entries, model.Entry{Value: n, Kana: kana, Romaji: romaji})
	}
	if err := printEntries(cmd, entries, columns); err != nil {
		return err
	}
	if !readSpeak {
		return nil
	}
	spoken := model.Kana
	if len(columns) == 1 {
		spoken = columns[0]
	}
	return speakEntries(s, entries, spoken)
}

func readColumns(value string) ([]model.Alphabet, error) {
	if value == "both" {
		return []model.Alphabet{model.Kana, model.Romaji}, nil
	}
	a, err := model.ParseAlphabet(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --alphabet: %w", err)
	}
	return []model.Alphabet{a}, nil
}

func printEntries(cmd *cobra.Command, entries []model.Entry, columns []model.Alphabet) error {
	headers := []string{"Value"}
	for _, a := range columns {
		headers = append(headers, strings.ToUpper(a.String()[:1])+a.String()[1:])
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{strconv.Itoa(e.Value)}
		for _, a := range columns {
			if a == model.Kana {
				row = append(row, e.Kana)
			} else {
				row = append(row, e.Romaji)
			}
		}
		rows = append(rows, row)
	}
	return writeTable(cmd.OutOrStdout(), headers, rows, map[int]bool{0: true})
}

// speakEntries plays entries in order and blocks until done or interrupted.
func speakEntries(s settings, entries []model.Entry, a model.Alphabet) error {
	log, err := s.newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	port, err := speech.Detect(s.cfg.Speech, log)
	if err != nil {
		return fmt.Errorf("failed to set up speech: %w", err)
	}
	sched := playback.New(port, s.speechOptions(a), log)
	sched.Subscribe(func(st playback.Status) {
		if st.Notice != nil {
			logErrf("speech: %v\n", st.Notice)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := sched.Play(catalog.Texts(entries, a)); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}
	if err := sched.Wait(ctx); err != nil {
		sched.Stop()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return nil
}

func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&catalogStart, "start", defaultCatalogStart, "first value shown")
	cmd.Flags().IntVar(&catalogEnd, "end", defaultCatalogEnd, "end of the browsable range (exclusive)")
	cmd.Flags().IntVar(&catalogSize, "size", defaultPageSize, "entries per page")
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print a page of consecutive readings",
		Args:  cobra.NoArgs,
		RunE:  runCatalogCmd,
	}
	addCatalogFlags(cmd)
	cmd.Flags().BoolVar(&catalogSpeak, "speak", false, "speak the page in kana")
	return cmd
}

func runCatalogCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cat, err := catalog.New(s.cfg.CatalogStart, s.cfg.CatalogEnd)
	if err != nil {
		return err
	}
	page, err := cat.Page(s.cfg.CatalogStart, s.cfg.PageSize)
	if err != nil {
		return err
	}
	if err := printEntries(cmd, page, []model.Alphabet{model.Kana, model.Romaji}); err != nil {
		return err
	}
	if !catalogSpeak {
		return nil
	}
	return speakEntries(s, page, model.Kana)
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and listen to readings page by page",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	addCatalogFlags(cmd)
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := requireTerminal(); err != nil {
		return err
	}
	cat, err := catalog.New(s.cfg.CatalogStart, s.cfg.CatalogEnd)
	if err != nil {
		return err
	}
	pager, err := catalog.NewPager(cat, s.cfg.CatalogStart, s.cfg.PageSize)
	if err != nil {
		return err
	}
	log, err := s.newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	port, err := speech.Detect(s.cfg.Speech, log)
	if err != nil {
		return fmt.Errorf("failed to set up speech: %w", err)
	}
	defer port.Stop()
	sched := playback.New(port, s.speechOptions(model.Kana), log)

	m := browseui.NewModel(pager, sched, log)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browse TUI: %w", err)
	}
	return nil
}

func addQuizFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&quizPool, "pool", defaultPool, "price pool to draw targets from")
	cmd.Flags().IntVar(&quizMaxDigits, "max-digits", quiz.DefaultMaxDigits, "digits the answer buffer holds")
	cmd.Flags().BoolVar(&quizNoAuto, "no-auto", false, "do not speak each new price automatically")
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Listen to prices and type what you hear",
		Args:  cobra.NoArgs,
		RunE:  runQuizCmd,
	}
	addQuizFlags(cmd)
	return cmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := requireTerminal(); err != nil {
		return err
	}
	log, err := s.newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	values, err := loadQuizPool(s.cfg.Pool, s.cfg.MaxDigits)
	if err != nil {
		return err
	}

	port, err := speech.Detect(s.cfg.Speech, log)
	if err != nil {
		return fmt.Errorf("failed to set up speech: %w", err)
	}
	defer port.Stop()

	engine := quiz.New(port, quiz.Options{
		MaxDigits: s.cfg.MaxDigits,
		Speech:    s.speechOptions(model.Kana),
		Logger:    log,
		OnCorrect: func(target int) {
			log.Info("round solved", "pool", s.cfg.Pool, "target", target)
		},
	})
	if _, err := engine.NewRound(values); err != nil {
		return fmt.Errorf("failed to start quiz: %w", err)
	}

	m := tui.NewModel(engine, s.cfg.Pool, !quizNoAuto, log)
	defer m.Close()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadQuizPool reads the named pool, seeding the default pool on first use.
func loadQuizPool(name string, maxDigits int) ([]int, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	if name == defaultPool {
		if _, err := st.SeedDefault(ctx, defaultPool, quiz.DefaultPool); err != nil {
			return nil, fmt.Errorf("failed to seed default pool: %w", err)
		}
	}
	values, err := st.ListValues(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrPoolNotFound) {
			return nil, fmt.Errorf("pool %q does not exist (see: suuji pool list)", name)
		}
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}
	usable := pricelist.Filter(values, maxDigits)
	if skipped := len(values) - len(usable); skipped > 0 {
		logErrf("skipping %d values longer than %d digits\n", skipped, maxDigits)
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("pool %q has no usable values (add some with: suuji pool add %s <price>...)", name, name)
	}
	return usable, nil
}

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("this command needs an interactive terminal")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := config.EnsureFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

// flagChanged also reports true for persistent flags set on a parent command.
func flagChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Changed
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil {
		return f.Changed
	}
	return false
}

func validateConfig(cfg model.Config) error {
	if cfg.CatalogStart < 0 || cfg.CatalogStart > numeral.MaxValue {
		return fmt.Errorf("--start must be between 0 and %d", numeral.MaxValue)
	}
	if cfg.CatalogEnd <= cfg.CatalogStart || cfg.CatalogEnd > numeral.MaxValue+1 {
		return fmt.Errorf("--end must be greater than --start and at most %d", numeral.MaxValue+1)
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("--size must be > 0")
	}
	if cfg.MaxDigits <= 0 || cfg.MaxDigits > 8 {
		return fmt.Errorf("--max-digits must be between 1 and 8")
	}
	if strings.TrimSpace(cfg.Pool) == "" {
		return fmt.Errorf("--pool must not be empty")
	}
	if cfg.Speech.Rate <= 0 || cfg.Speech.Rate > 4 {
		return fmt.Errorf("--rate must be > 0 and <= 4")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
