package manifest

import "errors"

// HandlerType enumerates the supported handler kinds.
type HandlerType string

const (
	HandlerRest   HandlerType = "rest"
	HandlerStatic HandlerType = "static"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("manifest: invalid")

// Source kinds for static handlers, written as "<kind>:<arg>".
const (
	SourceDir    = "dir"
	SourceBundle = "bundle"
)
