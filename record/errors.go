package record

import "errors"

var errDilateNotPositive = errors.New("record: dilate factor must be positive")
