package fqn

import "testing"

func TestPackage(t *testing.T) {
	if got := Package("a.b"); got != "a.b" {
		t.Errorf("Package(a.b) = %q", got)
	}
	if got := Package(""); got != DefaultPackage {
		t.Errorf("Package(\"\") = %q, want %q", got, DefaultPackage)
	}
}

func TestTypeAndMember(t *testing.T) {
	typeQN := Type("a.b", "C")
	if typeQN != "a.b.C" {
		t.Fatalf("Type = %q", typeQN)
	}
	if got := Member(typeQN, "m"); got != "a.b.C.m" {
		t.Errorf("Member = %q", got)
	}
	if got := Type(Package(""), "Main"); got != "(default package).Main" {
		t.Errorf("Type in default package = %q", got)
	}
}

func TestSimpleName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Base", "Base"},
		{"Base<T>", "Base"},
		{"java.util.List<String>", "List"},
		{"Map.Entry<K, V>", "Entry"},
		{"Comparable<Map<String, Integer>>", "Comparable"},
		{"  Runnable ", "Runnable"},
		{"Object[]", "Object"},
	}
	for _, tt := range tests {
		if got := SimpleName(tt.in); got != tt.want {
			t.Errorf("SimpleName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
