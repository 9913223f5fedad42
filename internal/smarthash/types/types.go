package types

// `json:"..."` tags describe the consolidated JSON store layout on disk.

// HashRecord is one entry of a hash record store. Identity is the canonical
// key (absolute, optionally case-folded path); Path is the absolute path used
// for rendering. Touched is per-run state and is never persisted.
type HashRecord struct {
	Identity string
	Path     string
	Hash     string
	Touched  bool
}

// StoreEntry is one element of the "data" array of a JSON store file.
type StoreEntry struct {
	FileName string `json:"file_name"`
	Hash     string `json:"hash"`
}

// StoreDocument is the top-level object of a JSON store file. Comments are
// written on save and ignored on load.
type StoreDocument struct {
	Comment []string     `json:"_comment,omitempty"`
	Data    []StoreEntry `json:"data"`
}

// ExitCode is the process exit status of a hashing run. Codes below
// ExitFailed mean the run finished normally.
type ExitCode int

const (
	ExitOK                       ExitCode = 0
	ExitOKSkippedAlreadyHashed   ExitCode = 2
	ExitFailed                   ExitCode = 7
	ExitInterruptedByUser        ExitCode = 8
	ExitDataReadError            ExitCode = 9
	ExitExceptionThrown          ExitCode = 10
	ExitInvalidCommandLineParams ExitCode = 11
	ExitAppUsageError            ExitCode = 12
)

var exitCodeNames = map[ExitCode]string{
	ExitOK:                       "OK",
	ExitOKSkippedAlreadyHashed:   "OK_SKIPPED_ALREADY_CALCULATED",
	ExitFailed:                   "FAILED",
	ExitInterruptedByUser:        "PROGRAM_INTERRUPTED_BY_USER",
	ExitDataReadError:            "DATA_READ_ERROR",
	ExitExceptionThrown:          "EXCEPTION_THROWN_ON_PROGRAM_EXECUTION",
	ExitInvalidCommandLineParams: "INVALID_COMMAND_LINE_PARAMETERS",
	ExitAppUsageError:            "APP_USAGE_ERROR",
}

// String returns the symbolic name of the exit code.
func (c ExitCode) String() string {
	if name, ok := exitCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsOK reports whether the code signals a successful run.
func (c ExitCode) IsOK() bool {
	return c < ExitFailed
}

// Worse returns the more severe of two exit codes.
func (c ExitCode) Worse(other ExitCode) ExitCode {
	if other > c {
		return other
	}
	return c
}
