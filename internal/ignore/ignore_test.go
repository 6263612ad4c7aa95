package ignore

import "testing"

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		ok   bool
		kind Kind
		neg  bool
		dir  bool
		pat  string
	}{
		{"", false, 0, false, false, ""},
		{"# comment", false, 0, false, false, ""},
		{"*.log", true, Suffix, false, false, ".log"},
		{"build/", true, Basename, false, true, "build"},
		{"!keep.log", true, Basename, true, false, "keep.log"},
		{"node_modules", true, Basename, false, false, "node_modules"},
		{"src/*", true, Prefix, false, false, "src/"},
	}
	for _, tc := range cases {
		rule, ok := ParseLine(tc.line)
		if ok != tc.ok {
			t.Fatalf("ParseLine(%q) ok = %v, want %v", tc.line, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if rule.Kind != tc.kind || rule.Negation != tc.neg || rule.DirOnly != tc.dir || rule.Pattern != tc.pat {
			t.Fatalf("ParseLine(%q) = %+v, want kind=%v neg=%v dir=%v pat=%q", tc.line, rule, tc.kind, tc.neg, tc.dir, tc.pat)
		}
	}
}

func TestMatchLastWins(t *testing.T) {
	eng := NewEngine([]Rule{
		{Pattern: ".log", Kind: Suffix},
		{Pattern: ".log", Kind: Suffix, Negation: true},
	})
	if eng.Match("app.log", "app.log", false) {
		t.Fatalf("negation rule listed last should win and un-ignore app.log")
	}
}

func TestMatchDirOnlySkipsFiles(t *testing.T) {
	eng := NewEngine([]Rule{
		{Pattern: "build", Kind: Basename, DirOnly: true},
	})
	if eng.Match("build", "build", false) {
		t.Fatalf("dir-only rule must not match a file named build")
	}
	if !eng.Match("build", "build", true) {
		t.Fatalf("dir-only rule should match a directory named build")
	}
}

func TestMatchPriorityOrdering(t *testing.T) {
	// Simulates three-tier priority: earlier rules ignore .git and
	// vendor, and a negation for vendor appended later in the rule list
	// (where a project-tier rule would sit) re-includes vendor.
	eng := NewEngine([]Rule{
		{Pattern: ".git", Kind: Basename, DirOnly: true},
		{Pattern: "vendor", Kind: Basename, DirOnly: true},
		{Pattern: "vendor", Kind: Basename, DirOnly: true, Negation: true},
	})
	if eng.Match("vendor", "vendor", true) {
		t.Fatalf("later project-tier negation should override earlier default ignore")
	}
	if !eng.Match(".git", ".git", true) {
		t.Fatalf(".git should still be ignored")
	}
}
