package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolls.
// All rolls are logged at debug level with their odds, drawn value, and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped Source without logging, so a Roller can stand in
// wherever a Source is accepted.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// OneIn rolls a one-in-n chance and logs the result at debug level.
//
// Postcondition: result logged; same distribution as OneIn(src, n).
func (r *Roller) OneIn(label string, n int) OneInResult {
	result := OneIn(r.src, n)
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Int("odds", result.N),
		zap.Int("value", result.Value),
		zap.Bool("passed", result.Passed),
	)
	return result
}
