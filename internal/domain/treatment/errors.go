package treatment

import "errors"

var ErrNotFound = errors.New("treatment not found")
