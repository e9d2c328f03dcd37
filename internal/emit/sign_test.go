package emit

import (
	"context"
	"os"
	"testing"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
)

func TestSignerNotConfiguredWithoutKey(t *testing.T) {
	s := newSigner(Config{})
	if s.configured() {
		t.Fatal("expected signer to be unconfigured without a GPG key")
	}
}

func TestSignerNotConfiguredWithNoSign(t *testing.T) {
	s := newSigner(Config{GPGKey: "/key.asc", GPGName: "pkger", NoSign: true})
	if s.configured() {
		t.Fatal("expected --no-sign to disable signing")
	}
}

func TestSignIfConfiguredSkipsUnsignableFormat(t *testing.T) {
	s := newSigner(Config{GPGKey: "/dev/null", GPGName: "pkger"})
	fc := &fakeContainer{}
	if err := s.signIfConfigured(context.Background(), fc, FormatPkg, "/tmp/pkger-emit/pkg/out.pkg.tar.zst"); err != nil {
		t.Fatalf("signIfConfigured: %v", err)
	}
	if len(fc.copiedTo) != 0 {
		t.Fatal("expected no key staging for a non-signable format")
	}
}

func TestSignIfConfiguredNoopWhenUnconfigured(t *testing.T) {
	s := newSigner(Config{})
	fc := &fakeContainer{}
	if err := s.signIfConfigured(context.Background(), fc, FormatRPM, "/tmp/out.rpm"); err != nil {
		t.Fatalf("signIfConfigured: %v", err)
	}
	if len(fc.copiedTo) != 0 {
		t.Fatal("expected no container interaction when signing isn't configured")
	}
}

func TestSignIfConfiguredImportsKeyAndSignsRPM(t *testing.T) {
	keyPath := t.TempDir() + "/key.asc"
	if err := os.WriteFile(keyPath, []byte("fake-armored-key"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := newSigner(Config{GPGKey: keyPath, GPGName: "pkger"})
	s.passphrase = "unlocked-in-test"
	s.once.Do(func() {}) // mark the passphrase prompt as already satisfied

	fc := &fakeContainer{execResults: map[string]*containerengine.ExecResult{
		"gpg": {ExitCode: 0},
		"rpm": {ExitCode: 0},
	}}
	if err := s.signIfConfigured(context.Background(), fc, FormatRPM, "/tmp/out.rpm"); err != nil {
		t.Fatalf("signIfConfigured: %v", err)
	}
	if len(fc.copiedTo) != 1 {
		t.Fatalf("expected the signing key to be staged once, got %d", len(fc.copiedTo))
	}
}
