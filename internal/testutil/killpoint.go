//go:build crashtest

// Package testutil holds crash-testing hooks for directfile.
//
// A kill point is a named location where the process exits when that name is
// the armed target. blockfile uses them around record writes and syncs so a
// test can stop a writer at an exact step and inspect what reached the file.
//
// Usage:
//
//	// In library code (a no-op without the crashtest tag):
//	testutil.MaybeKill(testutil.KPBlockFileAppend1)
//
//	// In the crashing process:
//	testutil.SetKillPoint(testutil.KPBlockFileAppend1)
//
// Build with kill points enabled:
//
//	go test -tags crashtest ./...
package testutil

import (
	"os"
	"sync"
	"sync/atomic"
)

type killPointState struct {
	target atomic.Pointer[string]
	armed  atomic.Bool

	mu   sync.Mutex
	hits map[string]int64
}

var killPoints = &killPointState{hits: make(map[string]int64)}

// KillPointEnvVar names the environment variable read at startup to arm a
// kill point in a child process.
const KillPointEnvVar = "DIRECTFILE_KILL_POINT"

func init() {
	if target := os.Getenv(KillPointEnvVar); target != "" {
		SetKillPoint(target)
	}
}

// SetKillPoint arms name as the target.
func SetKillPoint(name string) {
	killPoints.target.Store(&name)
	killPoints.armed.Store(true)
}

// ClearKillPoint removes the target and disarms.
func ClearKillPoint() {
	killPoints.target.Store(nil)
	killPoints.armed.Store(false)
}

// ArmKillPoint re-enables a previously set target.
func ArmKillPoint() {
	killPoints.armed.Store(true)
}

// DisarmKillPoint stops MaybeKill from firing but keeps the target.
func DisarmKillPoint() {
	killPoints.armed.Store(false)
}

// IsKillPointArmed reports whether MaybeKill is live.
func IsKillPointArmed() bool {
	return killPoints.armed.Load()
}

// GetKillPointTarget returns the current target, or "".
func GetKillPointTarget() string {
	if p := killPoints.target.Load(); p != nil {
		return *p
	}
	return ""
}

// GetKillPointHitCount returns how often name was reached while armed.
func GetKillPointHitCount(name string) int64 {
	killPoints.mu.Lock()
	defer killPoints.mu.Unlock()
	return killPoints.hits[name]
}

// ResetKillPointCounts zeroes every hit counter.
func ResetKillPointCounts() {
	killPoints.mu.Lock()
	killPoints.hits = make(map[string]int64)
	killPoints.mu.Unlock()
}

// MaybeKill exits the process with status 0 when armed and name is the target.
func MaybeKill(name string) {
	if !killPoints.armed.Load() {
		return
	}

	killPoints.mu.Lock()
	killPoints.hits[name]++
	killPoints.mu.Unlock()

	if GetKillPointTarget() == name {
		os.Exit(0)
	}
}
