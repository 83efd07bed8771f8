// Package engine runs the sequential password search against an open archive.
package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/zipforce/internal/archive"
	"github.com/verte-zerg/zipforce/internal/candidate"
	"github.com/verte-zerg/zipforce/internal/checkpoint"
	"github.com/verte-zerg/zipforce/internal/cleanup"
	"github.com/verte-zerg/zipforce/internal/model"
	"github.com/verte-zerg/zipforce/internal/progress"
	"github.com/verte-zerg/zipforce/internal/report"
)

var (
	// ErrMembersNotInArchive is returned when a requested member is missing.
	ErrMembersNotInArchive = errors.New("members not in archive")
	// ErrConfigInvalid is returned for jobs that cannot be searched.
	ErrConfigInvalid = errors.New("invalid search configuration")
)

// Archive is the decrypt-and-extract capability the engine drives.
type Archive interface {
	Has(name string) bool
	Extract(members []string, password, outputDir string) (model.TrialOutcome, error)
}

// Engine searches for the password of an archive.
type Engine struct {
	printer       *report.Printer
	log           *zap.Logger
	now           func() time.Time
	checkpointDir string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithCheckpointDir sets where interrupted searches are recorded.
func WithCheckpointDir(dir string) Option {
	return func(e *Engine) {
		e.checkpointDir = dir
	}
}

// New returns an Engine printing user-facing messages through printer.
func New(printer *report.Printer, opts ...Option) *Engine {
	e := &Engine{
		printer:       printer,
		log:           zap.NewNop(),
		now:           time.Now,
		checkpointDir: ".",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks a job before any archive access.
func Validate(job model.SearchJob) error {
	if len(job.Members) == 0 {
		return fmt.Errorf("%w: at least one member is required", ErrConfigInvalid)
	}
	if job.Mode() == model.ModeAlphabet {
		if job.Alphabet == "" {
			return fmt.Errorf("%w: an alphabet or a dictionary is required", ErrConfigInvalid)
		}
		if job.MaxLength < 1 {
			return fmt.Errorf("%w: maximum length must be >= 1", ErrConfigInvalid)
		}
	}
	return nil
}

// CheckMembers verifies every member exists in arc and stays inside outputDir.
func CheckMembers(arc Archive, members []string, outputDir string) error {
	var missing []string
	for _, name := range members {
		if !arc.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMembersNotInArchive, strings.Join(missing, ", "))
	}
	for _, name := range members {
		if _, err := archive.SafeJoin(outputDir, name); err != nil {
			return err
		}
	}
	return nil
}

// Run tries candidates for job against arc until one extracts cleanly, the
// candidates run out, or ctx is cancelled. Cancellation is observed between
// trials; a trial in progress always completes.
func (e *Engine) Run(ctx context.Context, arc Archive, job model.SearchJob) (model.Result, error) {
	if err := Validate(job); err != nil {
		return model.Result{}, err
	}
	outputDir := job.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := CheckMembers(arc, job.Members, outputDir); err != nil {
		return model.Result{}, err
	}

	var candidates iter.Seq[model.Candidate]
	var dict *candidate.Dictionary
	if job.Mode() == model.ModeDictionary {
		if job.Alphabet != "" {
			e.printer.Warnf("WARNING: when you set a dictionary parameters affecting the alphabet are ignored.")
		}
		var err error
		dict, err = candidate.OpenDictionary(job.DictionaryPath)
		if err != nil {
			return model.Result{}, err
		}
		defer func() {
			if cerr := dict.Close(); cerr != nil {
				e.log.Warn("failed to close dictionary", zap.Error(cerr))
			}
		}()
		candidates = dict.Candidates()
		e.printer.Infof("Now cracking the password of '%s' while using dictionary: '%s'.", job.ArchivePath, job.DictionaryPath)
	} else {
		candidates = candidate.Product(job.Alphabet, job.MaxLength)
		e.printer.Infof("Now cracking the password of '%s' while using alphabet: '%s'.", job.ArchivePath, job.Alphabet)
		if total, err := candidate.Total(job.Alphabet, job.MaxLength); err == nil {
			e.printer.Infof("Search space: %s candidates up to length %d.", report.FormatAttempts(int64(total)), job.MaxLength)
		}
	}

	s := &search{
		arc:       arc,
		job:       job,
		outputDir: outputDir,
		tracker:   progress.NewTracker(e.printer.Writer(), job.Verbose, progress.WithClock(e.now)),
		log:       e.log,
	}
	result, err := s.loop(ctx, candidates)
	s.tracker.Clear()
	if err != nil {
		return result, err
	}
	if dict != nil && result.Status == model.StatusExhausted {
		if err := dict.Err(); err != nil {
			return result, err
		}
	}

	switch result.Status {
	case model.StatusFound:
		e.printer.Success(result)
	case model.StatusExhausted:
		if job.Mode() == model.ModeDictionary {
			e.printer.Failf("No valid password found in dictionary.")
		} else {
			e.printer.Failf("No valid password found for given length. Maybe try to increase the possible length.")
		}
	case model.StatusInterrupted:
		e.printer.Warnf("Program was exited by keyboard interrupt.")
		e.saveCheckpoint(job)
	}
	return result, nil
}

func (e *Engine) saveCheckpoint(job model.SearchJob) {
	cp := model.Checkpoint{ArchivePath: job.ArchivePath, Members: job.Members}
	path, err := checkpoint.Save(e.checkpointDir, cp, e.now())
	if err != nil {
		e.log.Warn("checkpoint not saved", zap.Error(err))
		e.printer.Warnf("Could not save progress: %v", err)
		return
	}
	e.printer.Infof("Progress saved to '%s'.", path)
}

// search is the mutable state of one Run call.
type search struct {
	arc       Archive
	job       model.SearchJob
	outputDir string
	tracker   *progress.Tracker
	log       *zap.Logger
}

func (s *search) loop(ctx context.Context, candidates iter.Seq[model.Candidate]) (model.Result, error) {
	for c := range candidates {
		if ctx.Err() != nil {
			return s.result(model.StatusInterrupted, ""), nil
		}
		outcome, err := s.arc.Extract(s.job.Members, c.Password, s.outputDir)
		s.tracker.Record(c.Password)
		if outcome == model.CorruptedOutput {
			s.removeOutput(c.Password)
		}
		if err != nil {
			return s.result("", ""), fmt.Errorf("trial failed: %w", err)
		}
		if outcome == model.Success {
			return s.result(model.StatusFound, c.Password), nil
		}
	}
	return s.result(model.StatusExhausted, ""), nil
}

func (s *search) removeOutput(password string) {
	removed := cleanup.Remove(s.outputDir, s.job.Members, s.log)
	s.log.Debug("corrupted output", zap.String("candidate", password), zap.Int("removed", removed))
}

func (s *search) result(status model.Status, password string) model.Result {
	return model.Result{
		Status:   status,
		Password: password,
		Attempts: s.tracker.Attempts(),
		Elapsed:  s.tracker.Elapsed(),
	}
}
