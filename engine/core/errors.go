package core

import (
	"errors"
)

var (
	ErrUnknown                 = errors.New("unknown")
	ErrMissingGraphicsAPI      = errors.New("graphics api dependency is missing")
	ErrMissingShaderSystem     = errors.New("shader system dependency is missing")
	ErrInvalidHandle           = errors.New("invalid handle")
	ErrShaderCompilation       = errors.New("shader compilation failed")
	ErrShaderLink              = errors.New("shader program link failed")
	ErrUnknownBackend          = errors.New("unknown renderer backend")
	ErrInvalidConfiguration    = errors.New("invalid configuration")
	ErrResourceNotFound        = errors.New("resource not found")
	ErrSystemNotInitialized    = errors.New("system not initialized")
	ErrSystemAlreadyInitialize = errors.New("system already initialized")
)
