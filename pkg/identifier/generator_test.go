package identifier

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		namespace   string
		used        []string
		want        string
	}{
		{
			name:        "first and last",
			displayName: "Ana Silva",
			namespace:   "acme.com",
			want:        "ana.silva@acme.com",
		},
		{
			name:        "middle token dropped",
			displayName: "Ana Maria Silva",
			namespace:   "acme.com",
			want:        "ana.silva@acme.com",
		},
		{
			name:        "single token has no dot",
			displayName: "Carlos",
			namespace:   "acme.com",
			want:        "carlos@acme.com",
		},
		{
			name:        "hyphen and apostrophe removed",
			displayName: "Anna-Lee O'Brien",
			namespace:   "acme.com",
			want:        "annalee.obrien@acme.com",
		},
		{
			name:        "accents stripped and case folded",
			displayName: "João SILVA",
			namespace:   "acme.com",
			want:        "joao.silva@acme.com",
		},
		{
			name:        "digits discarded",
			displayName: "R2 D2 Unit",
			namespace:   "acme.com",
			want:        "r.unit@acme.com",
		},
		{
			name:        "first collision gets suffix 1",
			displayName: "Ana Silva",
			namespace:   "acme.com",
			used:        []string{"ana.silva@acme.com"},
			want:        "ana.silva1@acme.com",
		},
		{
			name:        "gap in suffixes is filled",
			displayName: "Ana Silva",
			namespace:   "acme.com",
			used:        []string{"ana.silva@acme.com", "ana.silva1@acme.com", "ana.silva3@acme.com"},
			want:        "ana.silva2@acme.com",
		},
		{
			name:        "used in other namespace does not collide",
			displayName: "Ana Silva",
			namespace:   "acme.com",
			used:        []string{"ana.silva@other.com"},
			want:        "ana.silva@acme.com",
		},
		{
			name:        "last usable candidate",
			displayName: "X",
			namespace:   "ns",
			used:        suffixedIDs("x", "ns", 99),
			want:        "x99@ns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := NewSet(tt.used...)
			got, err := Generate(tt.displayName, tt.namespace, used)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
			if !used.Has(got) {
				t.Errorf("Generate() did not record %q in used set", got)
			}
			if len(used) != len(tt.used)+1 {
				t.Errorf("used set size = %d, want %d", len(used), len(tt.used)+1)
			}
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		namespace   string
		used        []string
		wantErr     error
	}{
		{
			name:        "digits only",
			displayName: "1234",
			namespace:   "acme.com",
			wantErr:     ErrInvalidName,
		},
		{
			name:        "punctuation only",
			displayName: "!!!",
			namespace:   "acme.com",
			wantErr:     ErrInvalidName,
		},
		{
			name:        "empty",
			displayName: "",
			namespace:   "acme.com",
			wantErr:     ErrInvalidName,
		},
		{
			name:        "whitespace only",
			displayName: " \t ",
			namespace:   "acme.com",
			wantErr:     ErrInvalidName,
		},
		{
			name:        "non latin script",
			displayName: "李 小龙",
			namespace:   "acme.com",
			wantErr:     ErrInvalidName,
		},
		{
			name:        "hundred candidates used",
			displayName: "X",
			namespace:   "ns",
			used:        suffixedIDs("x", "ns", 100),
			wantErr:     ErrExhaustedNamespace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := NewSet(tt.used...)
			got, err := Generate(tt.displayName, tt.namespace, used)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
			}
			if got != "" {
				t.Errorf("Generate() = %q, want empty result on error", got)
			}
			if len(used) != len(tt.used) {
				t.Errorf("used set modified on error: size %d, want %d", len(used), len(tt.used))
			}
		})
	}
}

func TestGenerate_RepeatedCallsIncreaseSuffix(t *testing.T) {
	used := NewSet()
	want := []string{
		"ana.silva@acme.com",
		"ana.silva1@acme.com",
		"ana.silva2@acme.com",
		"ana.silva3@acme.com",
	}

	for i, w := range want {
		got, err := Generate("Ana Silva", "acme.com", used)
		if err != nil {
			t.Fatalf("call %d: Generate() error = %v", i, err)
		}
		if got != w {
			t.Errorf("call %d: Generate() = %q, want %q", i, got, w)
		}
	}
}

func TestGenerate_AccentAndCaseInsensitive(t *testing.T) {
	a, err := Generate("João SILVA", "acme.com", NewSet())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := Generate("joao silva", "acme.com", NewSet())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a != b {
		t.Errorf("Generate() = %q and %q, want identical", a, b)
	}
}

func TestGenerate_Properties(t *testing.T) {
	names := []string{
		"Ana Silva", "Ana Maria Silva", "Carlos", "José  Álvarez", "Zoë O'Neil",
		"Ana Silva", "  Maria   da   Conceição  ", "ÉMILE", "ana silva", "Søren Kierkegaard",
	}
	used := NewSet()
	seen := make(map[string]bool)

	for _, name := range names {
		got, err := Generate(name, "acme.com", used)
		if err != nil {
			t.Fatalf("Generate(%q) error = %v", name, err)
		}
		if !strings.HasSuffix(got, "@acme.com") {
			t.Errorf("Generate(%q) = %q, want suffix @acme.com", name, got)
		}
		if seen[got] {
			t.Errorf("Generate(%q) = %q, already returned", name, got)
		}
		seen[got] = true

		if err := ValidateEmail(got); err != nil {
			t.Errorf("Generate(%q) = %q, not a valid email: %v", name, got, err)
		}

		base, err := LocalPart(name)
		if err != nil {
			t.Fatalf("LocalPart(%q) error = %v", name, err)
		}
		local := strings.TrimSuffix(got, "@acme.com")
		if strings.TrimRight(local, "0123456789") != base {
			t.Errorf("Generate(%q) local-part = %q, want base %q plus optional counter", name, local, base)
		}
	}
}

func TestGenerate_NilSet(t *testing.T) {
	got, err := Generate("Ana Silva", "acme.com", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "ana.silva@acme.com" {
		t.Errorf("Generate() = %q, want %q", got, "ana.silva@acme.com")
	}
}

func TestLocalPart(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		want        string
		wantErr     bool
	}{
		{name: "two tokens", displayName: "Ana Silva", want: "ana.silva"},
		{name: "three tokens", displayName: "Ana Maria Silva", want: "ana.silva"},
		{name: "one token", displayName: "Carlos", want: "carlos"},
		{name: "token made of digits vanishes", displayName: "Carlos 3rd", want: "carlos.rd"},
		{name: "nothing usable", displayName: "42", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalPart(tt.displayName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LocalPart() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LocalPart() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerator_Next(t *testing.T) {
	used := NewSet("carlos@acme.com")
	g := NewGenerator("acme.com", used)

	first, err := g.Next("Carlos")
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	second, err := g.Next("carlos")
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if first != "carlos1@acme.com" {
		t.Errorf("Next() = %q, want %q", first, "carlos1@acme.com")
	}
	if second != "carlos2@acme.com" {
		t.Errorf("Next() = %q, want %q", second, "carlos2@acme.com")
	}
	if g.Namespace() != "acme.com" {
		t.Errorf("Namespace() = %q, want %q", g.Namespace(), "acme.com")
	}
	if !g.Used().Has(second) || !used.Has(second) {
		t.Error("Used() should be the caller's set and contain generated identifiers")
	}

	if _, err := g.Next("!!!"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Next() error = %v, want %v", err, ErrInvalidName)
	}
}

func TestSet_Clone(t *testing.T) {
	s := NewSet("a@ns")
	c := s.Clone()
	c.Add("b@ns")

	if s.Has("b@ns") {
		t.Error("Clone() should not share storage with the original")
	}
	if !c.Has("a@ns") {
		t.Error("Clone() should copy existing identifiers")
	}
}

// suffixedIDs returns base@ns followed by base1@ns .. base(n-1)@ns.
func suffixedIDs(base, ns string, n int) []string {
	ids := []string{base + "@" + ns}
	for i := 1; i < n; i++ {
		ids = append(ids, base+strconv.Itoa(i)+"@"+ns)
	}
	return ids
}
