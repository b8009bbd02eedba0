package converter

import "fmt"

// Stage names the step of a conversion that failed.
type Stage string

const (
	StageValidate Stage = "validate"
	StageExtract  Stage = "extract"
	StageSearch   Stage = "search"
	StageRender   Stage = "render"
	StageWrite    Stage = "write"
	StageLoad     Stage = "load"
	StageSave     Stage = "save"
)

// StageError records which step failed and on which file.
type StageError struct {
	Stage Stage  `json:"stage"`
	Path  string `json:"path,omitempty"`
	Err   error  `json:"-"`
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, path string, err error) error {
	return &StageError{Stage: stage, Path: path, Err: err}
}
