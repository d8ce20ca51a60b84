package validate

import (
	"context"

	"github.com/rawblock/omtsf-engine/pkg/model"
)

// Config selects which rule levels run. L1 always runs; L2 defaults on;
// L3 defaults off since it performs cross-reference work a caller may not
// want on every invocation; its GLEIF check (L3-XRF-01) uses ExternalData
// and is skipped when that is nil, while the other L3 rules need none.
type Config struct {
	RunL2        bool
	RunL3        bool
	ExternalData ExternalDataSource
}

// DefaultConfig matches the engine's documented defaults.
func DefaultConfig() Config {
	return Config{RunL2: true, RunL3: false}
}

// Result holds every diagnostic produced by one Validate call. The
// engine never fails fast — every rule runs regardless of earlier
// findings.
type Result struct {
	Diagnostics []Diagnostic
}

// IsConformant reports whether the file has zero error-severity
// diagnostics.
func (r Result) IsConformant() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == model.SeverityError {
			return false
		}
	}
	return true
}

// Validate runs the configured rule levels against file and collects
// every diagnostic. Parse failures are a separate concern the caller's
// deserialization boundary handles before a File value ever reaches
// here.
func Validate(ctx context.Context, file *model.File, cfg Config) Result {
	vc := NewValidationContext(file)
	var diags []Diagnostic

	for _, rule := range l1Rules {
		diags = append(diags, safeRunL1(rule, vc)...)
	}

	if cfg.RunL2 {
		for _, rule := range l2Rules {
			diags = append(diags, rule(vc)...)
		}
	}

	if cfg.RunL3 {
		for _, rule := range l3Rules {
			diags = append(diags, rule(ctx, vc, cfg.ExternalData)...)
		}
	}

	return Result{Diagnostics: diags}
}

// safeRunL1 isolates an individual rule from an unexpected panic: a bug
// in one rule's handling of an impossible state becomes an Internal
// diagnostic rather than taking down the whole validation pass.
func safeRunL1(rule func(*ValidationContext) []Diagnostic, vc *ValidationContext) (diags []Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			diags = []Diagnostic{{
				RuleID:   RuleInternal,
				Severity: model.SeverityError,
				Location: GlobalLocation(),
				Message:  "internal validator error, rule panicked",
			}}
		}
	}()
	return rule(vc)
}
