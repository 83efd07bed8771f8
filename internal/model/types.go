// Package model defines shared data structures.
package model

import "time"

// Mode selects how candidates are produced.
type Mode string

const (
	ModeAlphabet   Mode = "alphabet"
	ModeDictionary Mode = "dictionary"
)

// SearchJob defines one password search.
type SearchJob struct {
	ArchivePath    string
	Members        []string
	OutputDir      string
	Alphabet       string
	DictionaryPath string
	MaxLength      int
	Verbose        bool
}

// Mode reports the active candidate source. A dictionary wins over an alphabet.
func (j SearchJob) Mode() Mode {
	if j.DictionaryPath != "" {
		return ModeDictionary
	}
	return ModeAlphabet
}

// Source tags where a candidate came from.
type Source int

const (
	SourceGenerated Source = iota
	SourceDictionary
)

// Candidate is one password to try.
type Candidate struct {
	Password string
	Source   Source
}

// TrialOutcome classifies a single decrypt-and-extract attempt.
type TrialOutcome int

const (
	WrongPassword TrialOutcome = iota
	CorruptedOutput
	Success
)

func (o TrialOutcome) String() string {
	switch o {
	case WrongPassword:
		return "wrong-password"
	case CorruptedOutput:
		return "corrupted-output"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Status is the terminal state of a search.
type Status string

const (
	StatusFound       Status = "found"
	StatusExhausted   Status = "exhausted"
	StatusInterrupted Status = "interrupted"
)

// Result summarizes a finished search.
type Result struct {
	Status   Status
	Password string
	Attempts int64
	Elapsed  time.Duration
}

// Checkpoint is the state persisted when a search is interrupted.
type Checkpoint struct {
	ArchivePath string
	Members     []string
}

// Run is a stored history entry for one search.
type Run struct {
	ID             string
	StartedAt      time.Time
	EndedAt        time.Time
	ArchivePath    string
	Members        []string
	Mode           Mode
	Alphabet       string
	DictionaryPath string
	MaxLength      int
	Status         Status
	Password       string
	Attempts       int64
	DurationMs     int64
}
