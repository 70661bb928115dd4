package tracking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ModelURIScheme prefixes registry model URIs.
const ModelURIScheme = "models:/"

// ErrInvalidModelURI indicates a string is not a well-formed models:/ URI.
var ErrInvalidModelURI = errors.New("tracking: invalid model URI")

// FormatModelURI builds a registry model URI of the form
// "models:/<name>/<selector>". The selector is either a version number or a
// stage name. Neither part is escaped; callers must not pass names
// containing '/'.
func FormatModelURI(name, selector string) string {
	return ModelURIScheme + name + "/" + selector
}

// ModelURIForVersion builds a model URI addressing an exact version, e.g.
// ModelURIForVersion("m", 3) == "models:/m/3".
func ModelURIForVersion(name string, version int) string {
	return FormatModelURI(name, strconv.Itoa(version))
}

// ModelURIForStage builds a model URI addressing the latest version in a
// stage, e.g. ModelURIForStage("m", "Staging") == "models:/m/Staging".
func ModelURIForStage(name, stage string) string {
	return FormatModelURI(name, stage)
}

// ParseModelURI splits a models:/ URI into its name and selector parts.
func ParseModelURI(uri string) (name, selector string, err error) {
	rest, ok := strings.CutPrefix(uri, ModelURIScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q does not start with %q", ErrInvalidModelURI, uri, ModelURIScheme)
	}

	name, selector, ok = strings.Cut(rest, "/")
	if !ok || name == "" || selector == "" {
		return "", "", fmt.Errorf("%w: %q must be %s<name>/<version-or-stage>", ErrInvalidModelURI, uri, ModelURIScheme)
	}
	return name, selector, nil
}

// isVersionSelector reports whether a URI selector addresses an exact
// version number rather than a stage name.
func isVersionSelector(selector string) bool {
	_, err := strconv.Atoi(selector)
	return err == nil
}
