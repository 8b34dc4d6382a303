//go:build !crashtest

// Package testutil holds crash-testing hooks for directfile. Without the
// crashtest build tag every hook is a no-op.
package testutil

// KillPointEnvVar names the environment variable read at startup to arm a
// kill point. It is ignored in normal builds.
const KillPointEnvVar = "DIRECTFILE_KILL_POINT"

// SetKillPoint is a no-op.
func SetKillPoint(_ string) {}

// ClearKillPoint is a no-op.
func ClearKillPoint() {}

// ArmKillPoint is a no-op.
func ArmKillPoint() {}

// DisarmKillPoint is a no-op.
func DisarmKillPoint() {}

// IsKillPointArmed always returns false.
func IsKillPointArmed() bool { return false }

// GetKillPointTarget always returns "".
func GetKillPointTarget() string { return "" }

// GetKillPointHitCount always returns 0.
func GetKillPointHitCount(_ string) int64 { return 0 }

// ResetKillPointCounts is a no-op.
func ResetKillPointCounts() {}

// MaybeKill is a no-op.
func MaybeKill(_ string) {}
