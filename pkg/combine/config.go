// File: pkg/combine/config.go
package combine

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrNoPolicy is returned when Arguments carry no selection policy.
var ErrNoPolicy = errors.New("no selection policy configured")

var validate = validator.New()

// Arguments holds the configuration options for one serialization run.
type Arguments struct {
	Output    string   `validate:"required"` // Destination path for the output document.
	IncludeDB bool                          // Summarize database files instead of writing a placeholder.
	Policy    Policy   `validate:"-"`        // Pattern-based or legacy allow-list selection.
	SkipPaths []string                      // Root-relative paths left out of both passes, e.g. the output itself.
}

// Validate checks that the arguments describe a runnable configuration.
func (a Arguments) Validate() error {
	if a.Policy == nil {
		return ErrNoPolicy
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// Report summarizes what a run wrote.
type Report struct {
	Output           string // Path of the written document.
	Overwritten      bool   // The destination existed before the run.
	TreeEntries      int    // Lines in the project structure section.
	Files            int    // Plain-text sections written.
	Databases        int    // Databases summarized.
	DatabasesSkipped int    // Databases replaced by a placeholder.
	Excluded         int    // Files dropped by the policy's classification.
	ReadErrors       int    // Files rendered as an inline read error.
}
