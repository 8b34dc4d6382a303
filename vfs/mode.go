package vfs

import (
	"fmt"
	"strings"
)

// Policy decides what Auto does when no cache-bypassing mode is available.
type Policy uint8

const (
	// FallbackToBuffered silently resolves to buffered I/O.
	FallbackToBuffered Policy = iota
	// ErrorOnViolation fails resolution and makes the caller decide.
	ErrorOnViolation
)

// String returns the text form used by ParseMode.
func (p Policy) String() string {
	switch p {
	case FallbackToBuffered:
		return "fallback"
	case ErrorOnViolation:
		return "error"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

type modeKind uint8

const (
	modeAuto modeKind = iota
	modeDirect
	modeUncached
	modeBuffered
)

// Mode is the caller's declared intent. The zero value is
// Auto(FallbackToBuffered).
type Mode struct {
	kind   modeKind
	policy Policy
}

var (
	// ModeDirect requires direct I/O and fails if it is unavailable.
	ModeDirect = Mode{kind: modeDirect}
	// ModeUncached requires cache bypass (direct or uncached) and fails if
	// neither is available.
	ModeUncached = Mode{kind: modeUncached}
	// ModeBuffered always uses the page cache.
	ModeBuffered = Mode{kind: modeBuffered}
)

// Auto prefers direct, then uncached, then buffered, as far as the probed
// capability allows. When only buffered is possible p decides the outcome.
func Auto(p Policy) Mode {
	return Mode{kind: modeAuto, policy: p}
}

// IsAuto reports whether m is an Auto mode.
func (m Mode) IsAuto() bool {
	return m.kind == modeAuto
}

// Policy returns the fallback policy of an Auto mode. ok is false for
// explicit modes.
func (m Mode) Policy() (p Policy, ok bool) {
	if m.kind != modeAuto {
		return FallbackToBuffered, false
	}
	return m.policy, true
}

// Validate rejects Mode values not built by this package.
func (m Mode) Validate() error {
	switch m.kind {
	case modeDirect, modeUncached, modeBuffered:
		if m.policy != FallbackToBuffered {
			return fmt.Errorf("vfs: policy %s set on explicit mode", m.policy)
		}
		return nil
	case modeAuto:
		if m.policy != FallbackToBuffered && m.policy != ErrorOnViolation {
			return fmt.Errorf("vfs: invalid policy %d", uint8(m.policy))
		}
		return nil
	default:
		return fmt.Errorf("vfs: invalid mode kind %d", uint8(m.kind))
	}
}

// String returns the text form used by ParseMode.
func (m Mode) String() string {
	switch m.kind {
	case modeDirect:
		return "direct"
	case modeUncached:
		return "uncached"
	case modeBuffered:
		return "buffered"
	case modeAuto:
		return "auto:" + m.policy.String()
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m.kind))
	}
}

// ParseMode parses direct, uncached, buffered, auto, auto:fallback or auto:error.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return ModeDirect, nil
	case "uncached":
		return ModeUncached, nil
	case "buffered":
		return ModeBuffered, nil
	case "auto", "auto:fallback", "":
		return Auto(FallbackToBuffered), nil
	case "auto:error":
		return Auto(ErrorOnViolation), nil
	default:
		return Mode{}, fmt.Errorf("vfs: unknown I/O mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Resolved is the mode a Handle actually runs in. It is never "auto".
type Resolved uint8

const (
	// ResolvedBuffered uses the page cache.
	ResolvedBuffered Resolved = iota
	// ResolvedUncached bypasses the cache; alignment is enforced only when known.
	ResolvedUncached
	// ResolvedDirect bypasses the cache and requires known alignment.
	ResolvedDirect
)

// String returns the name of the resolved mode.
func (r Resolved) String() string {
	switch r {
	case ResolvedBuffered:
		return "buffered"
	case ResolvedUncached:
		return "uncached"
	case ResolvedDirect:
		return "direct"
	default:
		return fmt.Sprintf("Resolved(%d)", uint8(r))
	}
}

// BypassesCache reports whether r skips the page cache.
func (r Resolved) BypassesCache() bool {
	return r == ResolvedDirect || r == ResolvedUncached
}

// Resolve reconciles the requested mode with the probed capability.
// Explicit direct and uncached requests are a hard contract: if the
// capability cannot satisfy them the result is a *ModeError. Auto walks
// direct, uncached, buffered and applies its policy only when buffered is
// the sole option. Resolve is pure.
func Resolve(m Mode, c Capability) (Resolved, error) {
	switch m.kind {
	case modeBuffered:
		return ResolvedBuffered, nil

	case modeDirect:
		if c.kind == KindDirectSupported {
			return ResolvedDirect, nil
		}
		return ResolvedBuffered, &ModeError{Requested: m, Capability: c}

	case modeUncached:
		switch c.kind {
		case KindDirectSupported, KindUncachedOnly:
			return ResolvedUncached, nil
		default:
			return ResolvedBuffered, &ModeError{Requested: m, Capability: c}
		}

	case modeAuto:
		switch c.kind {
		case KindDirectSupported:
			return ResolvedDirect, nil
		case KindUncachedOnly:
			return ResolvedUncached, nil
		default:
			if m.policy == ErrorOnViolation {
				return ResolvedBuffered, &ModeError{Requested: m, Capability: c}
			}
			return ResolvedBuffered, nil
		}

	default:
		return ResolvedBuffered, fmt.Errorf("vfs: resolve: %w", m.Validate())
	}
}
