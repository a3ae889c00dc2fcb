package xpbd

import "math"

// TimestepScheduler splits the duration of one Update into substep durations.
// For a given substeps count, the durations of indices 0..substeps-1 sum to dt.
type TimestepScheduler interface {
	Substep(index, substeps int, dt float64) float64
}

// UniformSchedule divides dt evenly.
type UniformSchedule struct{}

func (UniformSchedule) Substep(index, substeps int, dt float64) float64 {
	if substeps < 1 {
		return dt
	}
	return dt / float64(substeps)
}

// ExponentialSchedule doubles the duration of each substep: index i lasts
// dt·2^i/(2^n − 1). Early substeps are short, so the first corrections of a
// step are small.
type ExponentialSchedule struct{}

func (ExponentialSchedule) Substep(index, substeps int, dt float64) float64 {
	if substeps < 1 {
		return dt
	}
	// 2^(i-n) / (1 - 2^-n) avoids overflowing 2^n for large counts
	n := float64(substeps)
	return dt * math.Exp2(float64(index)-n) / (1 - math.Exp2(-n))
}
