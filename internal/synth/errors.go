package synth

import "errors"

var (
	ErrOutDirRequired    = errors.New("output directory required")
	ErrProjectRequired   = errors.New("project name required")
	ErrStageRequired     = errors.New("stage name required")
	ErrStackNameRequired = errors.New("stack name required")
)
