package questiongen

import "errors"

// ErrEmptyPrompt indicates the request carried no prompt text.
var ErrEmptyPrompt = errors.New("prompt must not be empty")
