// Package main provides the CLI entrypoint for zipforce.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/zipforce/internal/alphabet"
	"github.com/verte-zerg/zipforce/internal/archive"
	"github.com/verte-zerg/zipforce/internal/candidate"
	"github.com/verte-zerg/zipforce/internal/config"
	"github.com/verte-zerg/zipforce/internal/engine"
	"github.com/verte-zerg/zipforce/internal/historyui"
	"github.com/verte-zerg/zipforce/internal/logging"
	"github.com/verte-zerg/zipforce/internal/model"
	"github.com/verte-zerg/zipforce/internal/report"
	"github.com/verte-zerg/zipforce/internal/store"
)

const (
	defaultLength      = 8
	defaultHistoryLast = 50
)

const (
	exitOK               = 0
	exitError            = 1
	exitConfigInvalid    = 2
	exitArchiveNotFound  = 3
	exitMembersMissing   = 4
	exitDictionaryUnread = 5
	exitExhausted        = 6
	exitInterrupted      = 130
)

var (
	searchDictionary    string
	searchLower         bool
	searchUpper         bool
	searchDigits        bool
	searchSpecial       bool
	searchLength        int
	searchOutput        string
	searchVerbose       bool
	searchSpecialSet    string
	searchCheckpointDir string
	searchNoHistory     bool
	searchDebug         bool

	historyPlain bool
	historyLast  int
)

// statusError carries a process exit code for outcomes that are not failures
// of the program itself.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	code, msg := exitCode(err)
	if msg != "" {
		logErrln(msg)
	}
	os.Exit(code)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "zipforce INPUT FILES...",
		Short:         "Brute force the password of a ZIP file",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSearchCmd,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&searchDictionary, "dictionary", "D", "", "file with passwords to try, one per line")
	flags.BoolVarP(&searchLower, "lower", "c", false, "include lowercase letters in password alphabet")
	flags.BoolVarP(&searchUpper, "upper", "u", false, "include uppercase letters in password alphabet")
	flags.BoolVarP(&searchDigits, "digits", "d", false, "include digits in password alphabet")
	flags.BoolVarP(&searchSpecial, "special", "s", false, "include special characters in password alphabet (can be VERY slow)")
	flags.IntVarP(&searchLength, "length", "l", defaultLength, "maximum length of the brute forced password")
	flags.StringVarP(&searchOutput, "output", "o", "", "path where to save extracted files (default: current directory)")
	flags.BoolVarP(&searchVerbose, "verbose", "v", false, "show the current password and passwords per second")
	flags.StringVar(&searchSpecialSet, "special-set", alphabet.Special, "characters used by --special")
	flags.StringVar(&searchCheckpointDir, "checkpoint-dir", ".", "directory for progress files written on interrupt")
	flags.BoolVar(&searchNoHistory, "no-history", false, "do not record this run in the history database")
	flags.BoolVar(&searchDebug, "debug", false, "print diagnostic logs")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	history := !searchNoHistory
	applyIntConfig(cmd, "length", &searchLength, fileCfg.Search.Length)
	applyStringConfig(cmd, "output", &searchOutput, fileCfg.Search.Output)
	applyStringConfig(cmd, "special-set", &searchSpecialSet, fileCfg.Search.Special)
	applyBoolConfig(cmd, "verbose", &searchVerbose, fileCfg.Search.Verbose)
	applyStringConfig(cmd, "checkpoint-dir", &searchCheckpointDir, fileCfg.Search.CheckpointDir)
	applyBoolConfig(cmd, "no-history", &history, fileCfg.Search.History)

	classes := alphabet.Classes{
		Lower:   searchLower,
		Upper:   searchUpper,
		Digits:  searchDigits,
		Special: searchSpecial,
	}
	job := model.SearchJob{
		ArchivePath:    args[0],
		Members:        args[1:],
		OutputDir:      searchOutput,
		DictionaryPath: searchDictionary,
		MaxLength:      searchLength,
		Verbose:        searchVerbose,
	}
	if classes.Any() {
		job.Alphabet = alphabet.Build(classes, searchSpecialSet)
	}
	if job.Alphabet == "" && job.DictionaryPath == "" {
		return fmt.Errorf("%w: you need to specify at least one group to be included in the password alphabet or a dictionary", engine.ErrConfigInvalid)
	}
	if err := engine.Validate(job); err != nil {
		return err
	}

	log := logging.New(cmd.ErrOrStderr(), searchDebug)
	defer func() {
		_ = log.Sync()
	}()

	arc, err := archive.Open(job.ArchivePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := arc.Close(); cerr != nil {
			log.Warn("failed to close archive", zap.Error(cerr))
		}
	}()
	log.Debug("opened archive", zap.String("path", job.ArchivePath), zap.Strings("members", arc.Members()))

	printer := report.NewPrinter(cmd.OutOrStdout(), isTerminal(cmd.OutOrStdout()))
	eng := engine.New(printer,
		engine.WithLogger(log),
		engine.WithCheckpointDir(searchCheckpointDir),
	)
	startedAt := time.Now()
	result, err := eng.Run(cmd.Context(), arc, job)
	if err != nil {
		return err
	}
	if history {
		recordRun(log, job, result, startedAt)
	}
	return outcomeError(result.Status)
}

func recordRun(log *zap.Logger, job model.SearchJob, result model.Result, startedAt time.Time) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		log.Warn("failed to open history db", zap.Error(err))
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn("failed to close history db", zap.Error(cerr))
		}
	}()
	run := model.Run{
		StartedAt:      startedAt,
		EndedAt:        startedAt.Add(result.Elapsed),
		ArchivePath:    job.ArchivePath,
		Members:        job.Members,
		Mode:           job.Mode(),
		DictionaryPath: job.DictionaryPath,
		MaxLength:      job.MaxLength,
		Status:         result.Status,
		Password:       result.Password,
		Attempts:       result.Attempts,
		DurationMs:     result.Elapsed.Milliseconds(),
	}
	if run.Mode == model.ModeAlphabet {
		run.Alphabet = job.Alphabet
	}
	// cmd.Context may already be cancelled by the interrupt.
	if _, err := st.InsertRun(context.Background(), run); err != nil {
		log.Warn("failed to record run", zap.Error(err))
	}
}

func outcomeError(status model.Status) error {
	switch status {
	case model.StatusExhausted:
		return &statusError{code: exitExhausted}
	case model.StatusInterrupted:
		return &statusError{code: exitInterrupted}
	default:
		return nil
	}
}

// exitCode maps a command error to a process exit code and the message to print.
func exitCode(err error) (int, string) {
	if err == nil {
		return exitOK, ""
	}
	var se *statusError
	if errors.As(err, &se) {
		if se.err == nil {
			return se.code, ""
		}
		return se.code, se.err.Error()
	}
	switch {
	case errors.Is(err, archive.ErrArchiveNotFound):
		return exitArchiveNotFound, fmt.Sprintf("Could not find zip file. Please specify a valid path. (%v)", err)
	case errors.Is(err, engine.ErrMembersNotInArchive):
		return exitMembersMissing, fmt.Sprintf("All files have to be elements of the zip. (%v)", err)
	case errors.Is(err, candidate.ErrDictionaryUnreadable):
		return exitDictionaryUnread, fmt.Sprintf("Could not read dictionary file. Please specify a valid path. (%v)", err)
	case errors.Is(err, engine.ErrConfigInvalid), errors.Is(err, archive.ErrUnsafeMemberPath):
		return exitConfigInvalid, err.Error()
	default:
		return exitError, err.Error()
	}
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
	if err := ensureConfigFile(path); err != nil {
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

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text table instead of the interactive view")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("%w: --last must be >= 0", engine.ErrConfigInvalid)
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(cmd.Context(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	if historyPlain || !isTerminal(cmd.OutOrStdout()) {
		return report.RenderRuns(cmd.OutOrStdout(), runs)
	}
	program := tea.NewProgram(historyui.NewModel(runs), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# zipforce configuration
# Uncomment a value to enable it. CLI flags override config values.

[search]
# length = %d               # Maximum length of generated passwords
# output = "."             # Directory for extracted files
# special = %q
# verbose = false          # Show current password and passwords per second
# checkpoint-dir = "."     # Where progress files are written on interrupt
# history = true           # Record runs in the history database
`,
		defaultLength,
		alphabet.Special,
	)
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
