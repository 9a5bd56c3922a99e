package extract

import "errors"

var (
	// ErrSourceUnavailable means the document's byte source could not be
	// resolved. The extraction attempt fails without changing stored text.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrUnsupportedFormat means the bytes are not a readable PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrRecognizerUnavailable means the external recognizer is not
	// installed or not on PATH. Direct extraction still proceeds.
	ErrRecognizerUnavailable = errors.New("recognizer unavailable")
)
