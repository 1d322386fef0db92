// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timing

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token string
		kind  Kind
		str   string
	}{
		{token: "", kind: KindUnset, str: ""},
		{token: "   ", kind: KindUnset, str: ""},
		{token: "12", kind: KindTime, str: "12"},
		{token: " 12.5 ", kind: KindTime, str: "12.5"},
		{token: "1e1", kind: KindTime, str: "10"},
		{token: "chapter2", kind: KindEvent, str: "chapter2"},
		{token: "NaN", kind: KindEvent, str: "NaN"},
		{token: "Inf", kind: KindEvent, str: "Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			b := Parse(tt.token)
			if b.Kind() != tt.kind {
				t.Errorf("Parse(%q).Kind() = %v, want %v", tt.token, b.Kind(), tt.kind)
			}
			if b.String() != tt.str {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.token, b.String(), tt.str)
			}
		})
	}
}

func TestAt_NonFiniteIsUnset(t *testing.T) {
	if At(math.NaN()).IsSet() {
		t.Error("At(NaN) should be unset")
	}
	if At(math.Inf(1)).IsSet() {
		t.Error("At(+Inf) should be unset")
	}
	if On(" ").IsSet() {
		t.Error("On(blank) should be unset")
	}
}

func TestDescriptor_OpensCloses(t *testing.T) {
	bounded := Descriptor{Start: At(5), End: At(15)}
	open := Descriptor{Start: At(5)}
	eventStart := Descriptor{Start: On("chapter2")}
	eventStartTimeEnd := Descriptor{Start: On("chapter2"), End: At(30)}
	timeStartEventEnd := Descriptor{Start: At(5), End: On("credits")}

	tests := []struct {
		name   string
		d      Descriptor
		at     float64
		opens  bool
		closes bool
	}{
		{"bounded before", bounded, 0, false, true},
		{"bounded at start", bounded, 5, true, false},
		{"bounded inside", bounded, 10, true, false},
		{"bounded at end", bounded, 15, true, false},
		{"bounded after", bounded, 16, false, true},
		{"open before", open, 4.9, false, true},
		{"open far after", open, 1e9, true, false},
		{"event start never opens", eventStart, 100, false, false},
		{"event start closes by time end", eventStartTimeEnd, 31, false, true},
		{"event start inside time end", eventStartTimeEnd, 29, false, false},
		{"event end is open for time", timeStartEventEnd, 1e6, true, false},
		{"nan never transitions", bounded, math.NaN(), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Opens(tt.at); got != tt.opens {
				t.Errorf("Opens(%v) = %v, want %v", tt.at, got, tt.opens)
			}
			if got := tt.d.Closes(tt.at); got != tt.closes {
				t.Errorf("Closes(%v) = %v, want %v", tt.at, got, tt.closes)
			}
		})
	}
}

func TestDescriptor_Events(t *testing.T) {
	d := Descriptor{Start: On("toggle"), End: On("toggle")}
	if got := d.Events(); len(got) != 1 || got[0] != "toggle" {
		t.Errorf("Events() = %v, want [toggle]", got)
	}

	d = Descriptor{Start: On("a"), End: On("b")}
	if got := d.Events(); len(got) != 2 {
		t.Errorf("Events() = %v, want [a b]", got)
	}

	d = Descriptor{Start: At(1), End: At(2)}
	if got := d.Events(); len(got) != 0 {
		t.Errorf("Events() = %v, want none", got)
	}
}

func TestCheck(t *testing.T) {
	known := func(name string) bool { return name == "chapter2" }

	tests := []struct {
		name  string
		d     Descriptor
		known func(string) bool
		want  error
	}{
		{"valid", Descriptor{Start: At(1), End: At(2)}, nil, nil},
		{"missing separator", Unwind([]Raw{{Timing: "5"}})[0], nil, ErrMalformedRange},
		{"missing start", Unwind([]Raw{{Timing: "-5"}})[0], nil, ErrMalformedRange},
		{"reversed", Descriptor{Start: At(10), End: At(5)}, nil, ErrReversedRange},
		{"unknown event", Descriptor{Start: On("chapter9")}, known, ErrUnknownEvent},
		{"known event", Descriptor{Start: On("chapter2")}, known, nil},
		{"events unchecked without set", Descriptor{Start: On("anything")}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.d, tt.known)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Check() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRawCheck_Ambiguous(t *testing.T) {
	err := Raw{Timing: "1-2", Start: At(3)}.Check()
	if !errors.Is(err, ErrAmbiguousTiming) {
		t.Fatalf("Check() = %v, want ErrAmbiguousTiming", err)
	}
	if err := (Raw{Timing: "1-2"}).Check(); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
}
