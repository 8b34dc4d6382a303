package vfs

import "fmt"

// CapabilityKind classifies what an open file supports.
type CapabilityKind uint8

const (
	// KindBufferedOnly means direct I/O is unavailable.
	KindBufferedOnly CapabilityKind = iota
	// KindUncachedOnly means the cache can be bypassed but there is no
	// hardware alignment contract.
	KindUncachedOnly
	// KindDirectSupported means direct I/O is available with a known alignment.
	KindDirectSupported
)

// String returns the name of the kind.
func (k CapabilityKind) String() string {
	switch k {
	case KindBufferedOnly:
		return "buffered-only"
	case KindUncachedOnly:
		return "uncached-only"
	case KindDirectSupported:
		return "direct"
	default:
		return fmt.Sprintf("CapabilityKind(%d)", uint8(k))
	}
}

// Capability is the result of probing an open file. It is fixed for the
// lifetime of the descriptor. The zero value is BufferedOnly.
type Capability struct {
	kind      CapabilityKind
	alignment Alignment
}

// DirectSupported returns a Capability for direct I/O with alignment a.
func DirectSupported(a Alignment) Capability {
	return Capability{kind: KindDirectSupported, alignment: a}
}

// UncachedOnly returns a Capability for cache bypass without an alignment contract.
func UncachedOnly() Capability {
	return Capability{kind: KindUncachedOnly}
}

// BufferedOnly returns a Capability for files that only support cached I/O.
func BufferedOnly() Capability {
	return Capability{kind: KindBufferedOnly}
}

// Kind returns the capability classification.
func (c Capability) Kind() CapabilityKind {
	return c.kind
}

// Alignment returns the direct I/O alignment. ok is false unless the kind is
// KindDirectSupported.
func (c Capability) Alignment() (a Alignment, ok bool) {
	if c.kind != KindDirectSupported {
		return Alignment{}, false
	}
	return c.alignment, true
}

// String returns a compact representation for logs.
func (c Capability) String() string {
	if c.kind == KindDirectSupported {
		return fmt.Sprintf("direct(%s)", c.alignment)
	}
	return c.kind.String()
}

// Reason explains why no alignment requirements are known.
type Reason uint8

const (
	// ReasonNone means requirements are known.
	ReasonNone Reason = iota
	// ReasonPlatformUnsupported means the platform has no direct I/O alignment contract.
	ReasonPlatformUnsupported
	// ReasonSectorSizeUndetermined means the sector size query failed or returned garbage.
	ReasonSectorSizeUndetermined
	// ReasonFilesystemUnsupported means the filesystem does not honour direct I/O.
	ReasonFilesystemUnsupported
	// ReasonInvalidHandle means the descriptor could not be queried at all.
	ReasonInvalidHandle
)

// String returns the name of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonPlatformUnsupported:
		return "platform unsupported"
	case ReasonSectorSizeUndetermined:
		return "sector size undetermined"
	case ReasonFilesystemUnsupported:
		return "filesystem unsupported"
	case ReasonInvalidHandle:
		return "invalid handle"
	default:
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
}

// Requirements is either a known Alignment or an unknown outcome with a Reason.
type Requirements struct {
	alignment Alignment
	reason    Reason
	known     bool
}

// Known returns Requirements with alignment a.
func Known(a Alignment) Requirements {
	return Requirements{alignment: a, known: true}
}

// Unknown returns Requirements that carry only a reason. ReasonNone is
// replaced by ReasonPlatformUnsupported.
func Unknown(r Reason) Requirements {
	if r == ReasonNone {
		r = ReasonPlatformUnsupported
	}
	return Requirements{reason: r}
}

// IsKnown reports whether an alignment is available.
func (r Requirements) IsKnown() bool {
	return r.known
}

// Alignment returns the alignment when known.
func (r Requirements) Alignment() (a Alignment, ok bool) {
	return r.alignment, r.known
}

// Reason returns why the requirements are unknown, or ReasonNone.
func (r Requirements) Reason() Reason {
	if r.known {
		return ReasonNone
	}
	if r.reason == ReasonNone {
		// Zero value Requirements.
		return ReasonPlatformUnsupported
	}
	return r.reason
}

// String returns a compact representation for logs.
func (r Requirements) String() string {
	if r.known {
		return fmt.Sprintf("known(%s)", r.alignment)
	}
	return fmt.Sprintf("unknown(%s)", r.Reason())
}

// DeriveRequirements maps a probed Capability to Requirements. Direct
// capability yields its alignment; anything else yields Unknown with the
// probe's reason, or ReasonPlatformUnsupported when the probe gave none.
func DeriveRequirements(c Capability, probeReason Reason) Requirements {
	switch c.kind {
	case KindDirectSupported:
		return Known(c.alignment)
	case KindUncachedOnly, KindBufferedOnly:
		return Unknown(probeReason)
	default:
		return Unknown(ReasonPlatformUnsupported)
	}
}
