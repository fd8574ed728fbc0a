package inference

import "errors"

// ErrBackendUnavailable indicates the inference service was unreachable or
// answered with a non-2xx status.
var ErrBackendUnavailable = errors.New("inference service unavailable")
