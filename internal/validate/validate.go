// Package validate holds the input validators that run before any host
// interaction. Validators are pure: they check a value against a constraint
// and return an *Error naming the parameter, or nil. They never touch the
// host graph and never log.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error describes a failed input precondition.
type Error struct {
	Param      string
	Constraint string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.Param, e.Constraint)
}

func fail(param, format string, args ...any) *Error {
	return &Error{Param: param, Constraint: fmt.Sprintf(format, args...)}
}

// Range checks that value lies in [min, max] inclusive.
func Range(value, min, max float64, name string) error {
	if value < min || value > max {
		return fail(name, "must be between %v and %v, got %v", min, max, value)
	}
	return nil
}

// Choice checks that value is one of choices, comparing case-insensitively,
// and returns the canonically-cased member of the choice list.
func Choice(value string, choices []string, name string) (string, error) {
	for _, c := range choices {
		if strings.EqualFold(value, c) {
			return c, nil
		}
	}
	return "", fail(name, "must be one of %s, got '%s'", strings.Join(choices, ", "), value)
}

// NonEmpty checks that value contains at least one non-whitespace character.
func NonEmpty(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return fail(name, "cannot be empty")
	}
	return nil
}

// PositiveInt checks that value is strictly greater than zero.
func PositiveInt(value int, name string) error {
	if value <= 0 {
		return fail(name, "must be positive, got %d", value)
	}
	return nil
}

// FilePath checks a file path. When mustExist is set the path has to name an
// existing regular file.
func FilePath(path string, mustExist bool, name string) error {
	if err := NonEmpty(path, name); err != nil {
		return err
	}
	if !mustExist {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fail(name, "does not exist: %s", path)
	}
	if info.IsDir() {
		return fail(name, "is not a file: %s", path)
	}
	return nil
}

// DirPath checks a directory path. When mustExist is set the path has to
// name an existing directory.
func DirPath(path string, mustExist bool, name string) error {
	if err := NonEmpty(path, name); err != nil {
		return err
	}
	if !mustExist {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fail(name, "does not exist: %s", path)
	}
	if !info.IsDir() {
		return fail(name, "is not a directory: %s", path)
	}
	return nil
}

// Extension checks that path carries one of the allowed file extensions.
// Extensions may be given with or without the leading dot and are compared
// case-insensitively.
func Extension(path string, allowed []string, name string) error {
	normalized := make([]string, len(allowed))
	for i, ext := range allowed {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[i] = strings.ToLower(ext)
	}
	got := strings.ToLower(filepath.Ext(path))
	for _, ext := range normalized {
		if got == ext {
			return nil
		}
	}
	return fail(name, "must have one of these extensions: %s, got '%s'",
		strings.Join(allowed, ", "), got)
}
