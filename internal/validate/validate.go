// Package validate runs integrity checks over a modular token
// directory: file structure, reference resolution, theme configuration,
// and round-trip stability. Findings carry a severity, the token or
// file path concerned, and a remediation suggestion; only critical and
// high findings fail validation.
package validate

import (
	"tokensmith/internal/config"
	"tokensmith/internal/oplog"
	"tokensmith/internal/resolver"
	"tokensmith/internal/transform"

	"go.uber.org/zap"
)

// Validator holds the policy knobs the individual checks consult
type Validator struct {
	// ExpectedSets is the recommended set layout; corpora that declare
	// a self-consistent alternate layout only get a warning
	ExpectedSets []string

	// SourceSet is the foundational set themes should mark as source
	SourceSet string

	// HopLimit bounds reference chains during resolution
	HopLimit int

	// Engine performs the transformations the round-trip check needs.
	// Left nil, a default engine is built from the policy.
	Engine *transform.Engine

	// Log receives operation records; nil means no logging
	Log *oplog.Logger
}

// New builds a validator from configuration
func New(cfg *config.Config) *Validator {
	return &Validator{
		ExpectedSets: cfg.RecommendedSets,
		SourceSet:    cfg.SourceSet,
		HopLimit:     cfg.HopLimit,
		Engine: transform.New(transform.Policy{
			SetOrder:     cfg.SetOrder,
			GroupMapping: cfg.GroupMapping,
			ResidualSet:  cfg.ResidualSet,
		}),
	}
}

func (v *Validator) hopLimit() int {
	if v.HopLimit > 0 {
		return v.HopLimit
	}
	return resolver.DefaultHopLimit
}

func (v *Validator) engine() *transform.Engine {
	if v.Engine != nil {
		return v.Engine
	}
	return transform.New(transform.DefaultPolicy())
}

func (v *Validator) log() *oplog.Logger {
	if v.Log != nil {
		return v.Log
	}
	return oplog.Nop()
}

// All runs every check against the modular directory and returns the
// combined report. canonicalPath, when given, additionally compares the
// tree against that canonical document. Checks that need a readable
// tree are skipped when the structure check could not produce one.
func (v *Validator) All(dir string, canonicalPath ...string) *Report {
	op := v.log().Start("validate", zap.String("dir", dir))

	tree, report := v.Structure(dir)
	if tree == nil {
		report.Sort()
		op.Complete(zap.Int("issues", len(report.Issues)), zap.Bool("valid", false))
		return report
	}

	report.Merge(v.References(tree))
	report.Merge(v.Themes(tree))
	report.Merge(v.Roundtrip(tree))
	for _, path := range canonicalPath {
		if path != "" {
			report.Merge(v.RoundtripAgainst(tree, path))
		}
	}
	report.Sort()

	op.Complete(zap.Int("issues", len(report.Issues)), zap.Bool("valid", report.Valid()))
	return report
}
