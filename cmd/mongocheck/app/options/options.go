// Package options aggregates the command-line options for mongocheck.
package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/mrlynn/mongocheck/internal/report"
	"github.com/mrlynn/mongocheck/pkg/options/logger"
	"github.com/mrlynn/mongocheck/pkg/options/mongodb"
)

// Options holds all configuration for a mongocheck run.
type Options struct {
	// Mongo configures the cluster connection.
	Mongo *mongodb.Options `json:"mongodb" mapstructure:"mongodb"`
	// Log configures the structured diagnostics logger.
	Log *logger.Options `json:"log" mapstructure:"log"`
	// Verbosity is the report threshold: error, warning or info.
	Verbosity string `json:"verbosity" mapstructure:"verbosity"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Mongo:     mongodb.NewOptions(),
		Log:       logger.NewOptions(),
		Verbosity: report.LevelInfo.String(),
	}
}

// AddFlags adds all mongocheck flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Mongo.AddFlags(fs)
	o.Log.AddFlags(fs)
	fs.StringVarP(&o.Verbosity, "verbosity", "v", o.Verbosity,
		"Verbosity threshold for check output (error|warning|info).")
}

// Complete completes the options, cascading environment fallbacks.
func (o *Options) Complete() error {
	return o.Mongo.Complete()
}

// Validate validates the options.
func (o *Options) Validate() error {
	if _, err := report.ParseLevel(o.Verbosity); err != nil {
		return err
	}

	if errs := o.Mongo.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid mongodb options: %w", errs[0])
	}

	return o.Log.Validate()
}

// Threshold returns the parsed verbosity threshold.
// Validate must have accepted the options first.
func (o *Options) Threshold() report.Level {
	level, err := report.ParseLevel(o.Verbosity)
	if err != nil {
		return report.LevelInfo
	}
	return level
}
