package errors

import (
	"path/filepath"
	"unicode"
)

// ValidateProviderID validates a provider identifier.
// IDs are used as cache key and event routing components, so they are kept
// to a conservative character set: letters, digits, '.', '-' and '_'.
func ValidateProviderID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "provider id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "provider id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '.', '-', '_':
			continue
		}
		return New(ErrCodeInvalidInput, "provider id contains invalid character %q", r)
	}
	return nil
}

// ValidatePath validates a filesystem path handed to a provider.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must be absolute once cleaned
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	if !filepath.IsAbs(filepath.Clean(path)) {
		return New(ErrCodeInvalidPath, "path must be absolute: %s", path)
	}
	return nil
}
