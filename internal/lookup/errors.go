package lookup

import "errors"

var ErrHistoryDisabled = errors.New("report history is not configured")
