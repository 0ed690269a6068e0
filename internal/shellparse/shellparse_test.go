package shellparse

import (
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		want     []string
		parseErr bool
	}{
		{"simple", "ls -la", []string{"ls -la"}, false},
		{"and chain", "ls && rm -rf /tmp/x", []string{"ls", "rm -rf /tmp/x"}, false},
		{"or chain", "true || false", []string{"true", "false"}, false},
		{"semicolon", "cd /tmp; ls", []string{"cd /tmp", "ls"}, false},
		{"pipe", "cat f | grep x", []string{"cat f", "grep x"}, false},
		{"quoted separator", `echo "a && b"`, []string{`echo "a && b"`}, false},
		{"single quoted pipe", `echo 'a | b'`, []string{`echo 'a | b'`}, false},
		{"unclosed quote", `echo "oops`, []string{`echo "oops`}, true},
		{"mixed", "a; b && c | d", []string{"a", "b", "c", "d"}, false},
		{"empty segments dropped", "ls &&  && pwd", []string{"ls", "pwd"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, parseErr := Split(tt.cmd)
			if parseErr != tt.parseErr {
				t.Fatalf("Split(%q) parseErr = %v, want %v", tt.cmd, parseErr, tt.parseErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%q) = %v, want %v", tt.cmd, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Split(%q)[%d] = %q, want %q", tt.cmd, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFirstToken(t *testing.T) {
	tests := []struct {
		segment string
		want    string
	}{
		{"ls -la", "ls"},
		{"  sudo apt update", "sudo"},
		{"FOO=bar make build", "make"},
		{"A=1 B=2 env", "env"},
		{`"quoted cmd" arg`, "quoted cmd"},
		{"", ""},
		{"FOO=bar", ""},
	}

	for _, tt := range tests {
		if got := FirstToken(tt.segment); got != tt.want {
			t.Errorf("FirstToken(%q) = %q, want %q", tt.segment, got, tt.want)
		}
	}
}

func TestExpandForMatch(t *testing.T) {
	tests := []struct {
		seg  string
		want []string
	}{
		{"rm -rf /", []string{"rm -rf /"}},
		{"FOO=1 rm -rf /", []string{"FOO=1 rm -rf /", "rm -rf /"}},
		{"A=1 B=2 rm -rf /", []string{"A=1 B=2 rm -rf /", "B=2 rm -rf /", "rm -rf /"}},
		{"sudo rm -rf /", []string{"sudo rm -rf /", "rm -rf /"}},
		{"doas rm -rf /", []string{"doas rm -rf /", "rm -rf /"}},
		{"sudo -n rm -rf /", []string{"sudo -n rm -rf /", "rm -rf /"}},
		{"FOO=bar sudo make install", []string{"FOO=bar sudo make install", "sudo make install", "make install"}},
		{"sudo", []string{"sudo"}},
		{"ls -la", []string{"ls -la"}},
	}

	for _, tt := range tests {
		got := ExpandForMatch(tt.seg)
		if len(got) != len(tt.want) {
			t.Errorf("ExpandForMatch(%q) = %v, want %v", tt.seg, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ExpandForMatch(%q)[%d] = %q, want %q", tt.seg, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("  rm   -rf    /tmp/x  ") != Normalize("rm -rf /tmp/x") {
		t.Error("whitespace variants should normalize identically")
	}
	if Normalize("ls&&pwd") != Normalize("ls && pwd") {
		t.Error("chain spacing should not affect normalization")
	}
	if Normalize("rm -rf /tmp/x") == Normalize("rm -rf /tmp/y") {
		t.Error("different commands must not normalize identically")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("rm -rf ./build", "host")
	b := Fingerprint("rm   -rf   ./build", "host")
	if a != b {
		t.Error("whitespace-only differences should share a fingerprint")
	}

	c := Fingerprint("rm -rf ./build --verbose", "host")
	if a == c {
		t.Error("an added flag must change the fingerprint")
	}

	d := Fingerprint("rm -rf ./build", "docker:dev")
	if a == d {
		t.Error("a different target must change the fingerprint")
	}
}
