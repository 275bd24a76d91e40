package storage

import (
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	keyLength   = 12
	maxNameLen  = 80
)

// ObjectKey builds "{context}/{yyyy}/{mm}/{random}-{name}". The random part
// keeps re-uploads of the same file name from overwriting each other.
func ObjectKey(uploadContext, name string, now time.Time) (string, error) {
	id, err := nanoid.Generate(keyAlphabet, keyLength)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate object key")
	}
	return path.Join(uploadContext, now.UTC().Format("2006/01"), id+"-"+SanitizeName(name)), nil
}

// SanitizeName reduces a client-supplied file name to a safe object name
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}

	s := strings.Trim(b.String(), ".-")
	if len(s) > maxNameLen {
		s = s[len(s)-maxNameLen:]
	}
	if s == "" {
		return "file"
	}
	return s
}
