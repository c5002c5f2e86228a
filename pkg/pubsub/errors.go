package pubsub

import "errors"

// ErrShutdown is returned by Subscribe after Shutdown has been called.
var ErrShutdown = errors.New("pubsub is shut down")
