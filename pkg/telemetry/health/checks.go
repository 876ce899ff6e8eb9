package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mercator-hq/rulescript/pkg/policy/scope"
)

// ErrNotLoaded is reported until the first full load of the script store.
var ErrNotLoaded = errors.New("scripts have not been loaded")

// LoadStatus is the view of a script manager the checks need.
type LoadStatus interface {
	LastLoad() time.Time
	Failures() map[scope.Descriptor]error
}

// LoadCheck fails until the first full load has completed.
func LoadCheck(src LoadStatus) CheckFunc {
	return func(context.Context) error {
		if src.LastLoad().IsZero() {
			return ErrNotLoaded
		}
		return nil
	}
}

// ScriptsCheck fails while any stored script does not compile. The engine
// keeps serving the last good rule set of such a scope.
func ScriptsCheck(src LoadStatus) CheckFunc {
	return func(context.Context) error {
		failures := src.Failures()
		if len(failures) == 0 {
			return nil
		}

		names := make([]string, 0, len(failures))
		for desc := range failures {
			names = append(names, desc.String())
		}
		sort.Strings(names)
		return fmt.Errorf("%d script(s) failing: %s", len(names), strings.Join(names, ", "))
	}
}
