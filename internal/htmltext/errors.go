package htmltext

import "errors"

var errEmpty = errors.New("empty html")
