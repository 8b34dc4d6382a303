package vfs

import (
	"errors"
	"testing"
)

func TestResolve_Table(t *testing.T) {
	direct := DirectSupported(MustUniformAlignment(4096))
	uncached := UncachedOnly()
	buffered := BufferedOnly()

	tests := []struct {
		mode    Mode
		c       Capability
		want    Resolved
		wantErr bool
	}{
		{ModeBuffered, direct, ResolvedBuffered, false},
		{ModeBuffered, uncached, ResolvedBuffered, false},
		{ModeBuffered, buffered, ResolvedBuffered, false},

		{ModeDirect, direct, ResolvedDirect, false},
		{ModeDirect, uncached, ResolvedBuffered, true},
		{ModeDirect, buffered, ResolvedBuffered, true},

		{ModeUncached, direct, ResolvedUncached, false},
		{ModeUncached, uncached, ResolvedUncached, false},
		{ModeUncached, buffered, ResolvedBuffered, true},

		{Auto(FallbackToBuffered), direct, ResolvedDirect, false},
		{Auto(FallbackToBuffered), uncached, ResolvedUncached, false},
		{Auto(FallbackToBuffered), buffered, ResolvedBuffered, false},

		{Auto(ErrorOnViolation), direct, ResolvedDirect, false},
		{Auto(ErrorOnViolation), uncached, ResolvedUncached, false},
		{Auto(ErrorOnViolation), buffered, ResolvedBuffered, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.c.String(), func(t *testing.T) {
			got, err := Resolve(tt.mode, tt.c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrModeUnsatisfiable) {
					t.Errorf("error %v does not match ErrModeUnsatisfiable", err)
				}
				var me *ModeError
				if !errors.As(err, &me) {
					t.Fatalf("error %T is not *ModeError", err)
				}
				if me.Requested != tt.mode || me.Capability != tt.c {
					t.Errorf("ModeError = %+v", me)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Resolve = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	c := DirectSupported(MustUniformAlignment(512))
	first, _ := Resolve(Auto(ErrorOnViolation), c)
	for range 10 {
		if got, _ := Resolve(Auto(ErrorOnViolation), c); got != first {
			t.Fatalf("Resolve changed result: %s then %s", first, got)
		}
	}
}

func TestResolve_InvalidMode(t *testing.T) {
	_, err := Resolve(Mode{kind: 42}, BufferedOnly())
	if err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if errors.Is(err, ErrModeUnsatisfiable) {
		t.Error("invalid mode should not be reported as unsatisfiable")
	}
}

func TestMode_ZeroValue(t *testing.T) {
	var m Mode
	if !m.IsAuto() {
		t.Error("zero Mode should be auto")
	}
	p, ok := m.Policy()
	if !ok || p != FallbackToBuffered {
		t.Errorf("zero Mode policy = %v, %v", p, ok)
	}
	if m != Auto(FallbackToBuffered) {
		t.Error("zero Mode != Auto(FallbackToBuffered)")
	}
	if _, ok := ModeDirect.Policy(); ok {
		t.Error("explicit mode should have no policy")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"direct", ModeDirect, false},
		{"UNCACHED", ModeUncached, false},
		{" buffered ", ModeBuffered, false},
		{"auto", Auto(FallbackToBuffered), false},
		{"auto:fallback", Auto(FallbackToBuffered), false},
		{"auto:error", Auto(ErrorOnViolation), false},
		{"", Auto(FallbackToBuffered), false},
		{"odirect", Mode{}, true},
		{"auto:maybe", Mode{}, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMode_TextRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeDirect, ModeUncached, ModeBuffered, Auto(FallbackToBuffered), Auto(ErrorOnViolation)} {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%s): %v", m, err)
		}
		var back Mode
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != m {
			t.Errorf("round trip %s -> %q -> %s", m, text, back)
		}
	}

	var m Mode
	if err := m.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) should fail")
	}
}

func TestMode_Validate(t *testing.T) {
	if err := (Mode{kind: modeDirect, policy: ErrorOnViolation}).Validate(); err == nil {
		t.Error("policy on explicit mode should not validate")
	}
	if err := (Mode{kind: modeAuto, policy: 9}).Validate(); err == nil {
		t.Error("unknown policy should not validate")
	}
	if _, err := (Mode{kind: 7}).MarshalText(); err == nil {
		t.Error("MarshalText of invalid mode should fail")
	}
}

func TestResolved_BypassesCache(t *testing.T) {
	tests := []struct {
		r    Resolved
		want bool
		str  string
	}{
		{ResolvedDirect, true, "direct"},
		{ResolvedUncached, true, "uncached"},
		{ResolvedBuffered, false, "buffered"},
	}
	for _, tt := range tests {
		if got := tt.r.BypassesCache(); got != tt.want {
			t.Errorf("%s.BypassesCache() = %v", tt.r, got)
		}
		if tt.r.String() != tt.str {
			t.Errorf("String() = %q, want %q", tt.r.String(), tt.str)
		}
	}
}
