package service

import (
	"bytes"
	"unicode/utf8"

	"docscan/internal/errors"
)

// validateDocument accepts UTF-8 text up to maxBytes. Empty documents are allowed.
func validateDocument(content []byte, maxBytes int64) error {
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return errors.ErrDocumentTooLarge
	}
	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return errors.ErrUnsupportedDocument
	}
	return nil
}
