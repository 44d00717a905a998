package integrity

import "errors"

var errStorageDisabled = errors.New("storage client is not configured")
