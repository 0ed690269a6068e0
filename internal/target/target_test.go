package target

import (
	"context"
	"errors"
	"testing"

	"shellgate/internal/testutil"
)

func TestResolvePrivilegeContext(t *testing.T) {
	r := NewResolver(Host()).WithEUID(func() int { return 1000 })

	tests := []struct {
		cmd      string
		usesSudo bool
	}{
		{"ls -la", false},
		{"sudo apt update", true},
		{"doas pkg_add vim", true},
		{"su -", true},
		{"  sudo   rm -rf /tmp/x", true},
		{"echo hello && sudo reboot", true},
		{"echo sudo", false},
		{"FOO=bar sudo make install", true},
	}

	for _, tt := range tests {
		ctx := r.Resolve(tt.cmd)
		if ctx.UsesSudo != tt.usesSudo {
			t.Errorf("Resolve(%q).UsesSudo = %v, want %v", tt.cmd, ctx.UsesSudo, tt.usesSudo)
		}
		if ctx.UsesRoot {
			t.Errorf("Resolve(%q).UsesRoot = true with euid 1000", tt.cmd)
		}
	}
}

func TestResolveRootIdentity(t *testing.T) {
	r := NewResolver(Host()).WithEUID(func() int { return 0 })

	ctx := r.Resolve("ls")
	if !ctx.UsesRoot {
		t.Error("euid 0 must set UsesRoot even without sudo in the text")
	}
	if ctx.UsesSudo {
		t.Error("ls does not use sudo")
	}
}

func TestProbeHostAlwaysReachable(t *testing.T) {
	mock := testutil.NewMockExecutor(nil, errors.New("should not be called"))
	r := NewResolver(Host()).WithExecutor(mock)

	testutil.RequireNoError(t, r.Probe(context.Background()), "host probe")
	testutil.RequireLen(t, mock.Calls(), 0, "host probe must not spawn anything")
}

func TestProbeDocker(t *testing.T) {
	mock := testutil.NewMockExecutor([]byte("{}"), nil)
	r := NewResolver(Container(BackendDocker, "dev")).WithExecutor(mock)

	testutil.RequireNoError(t, r.Probe(context.Background()), "docker probe")

	calls := mock.Calls()
	testutil.RequireLen(t, calls, 1, "probe calls")
	testutil.RequireEqual(t, "docker", calls[0].Name, "probe binary")
}

func TestProbeMissingContainer(t *testing.T) {
	mock := testutil.NewMockExecutor(nil, errors.New("no such container"))
	r := NewResolver(Container(BackendDistrobox, "missing-box")).WithExecutor(mock)

	err := r.Probe(context.Background())
	testutil.RequireErrorIs(t, err, ErrUnreachable, "missing container")
}

func TestProbeDistroboxList(t *testing.T) {
	listing := []byte(`ID           | NAME                 | STATUS             | IMAGE
a1b2c3d4e5f6 | mybox                | Up 2 hours         | fedora:40
`)
	mock := testutil.NewMockExecutor(listing, nil)

	r := NewResolver(Container(BackendDistrobox, "mybox")).WithExecutor(mock)
	testutil.RequireNoError(t, r.Probe(context.Background()), "listed distrobox")

	r = NewResolver(Container(BackendDistrobox, "other")).WithExecutor(mock)
	testutil.RequireErrorIs(t, r.Probe(context.Background()), ErrUnreachable, "unlisted distrobox")
}

func TestProbeEmptyName(t *testing.T) {
	r := NewResolver(Container(BackendPodman, "")).WithExecutor(testutil.NewMockExecutor(nil, nil))
	testutil.RequireErrorIs(t, r.Probe(context.Background()), ErrUnreachable, "empty name")
}

func TestTargetString(t *testing.T) {
	testutil.RequireEqual(t, "host", Host().String(), "host")
	testutil.RequireEqual(t, "docker:dev", Container(BackendDocker, "dev").String(), "container")
}
