package journal

import "errors"

// ErrClosed is returned by a Store after Close.
var ErrClosed = errors.New("journal: store closed")
