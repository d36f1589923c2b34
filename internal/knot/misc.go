package knot

import "errors"

const (
	// GLOBAL_NAMESPACE is the global object holding the host functions.
	GLOBAL_NAMESPACE = "Knot"

	DEF_QUEUED_SCRIPT_NAME = "<queued>"
	DEF_EVAL_SCRIPT_NAME   = "<eval>"
)

var (
	ErrScriptNotFound = errors.New("script not found")
)
