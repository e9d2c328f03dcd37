package emit

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// signer caches the GPG passphrase for the lifetime of a run, so a
// batch of jobs signing rpm/deb artifacts against the same key prompts
// the operator once rather than once per package (§4.7).
type signer struct {
	cfg Config

	once       sync.Once
	passphrase string
	promptErr  error
}

func newSigner(cfg Config) *signer {
	return &signer{cfg: cfg}
}

// configured reports whether signing should run at all: a key and
// signer identity are set, and --no-sign wasn't passed.
func (s *signer) configured() bool {
	return !s.cfg.NoSign && s.cfg.GPGKey != "" && s.cfg.GPGName != ""
}

func (s *signer) passphraseFor(prompt string) (string, error) {
	s.once.Do(func() {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			s.promptErr = errctx.Wrap(ErrSign, err)
			return
		}
		s.passphrase = string(b)
	})
	return s.passphrase, s.promptErr
}

// signIfConfigured signs containerPath in place inside ctr with
// rpm --addsign (rpm) or dpkg-sig (deb), when the emitter is
// configured to sign at all and format participates in signing.
func (s *signer) signIfConfigured(ctx context.Context, ctr container, format Format, containerPath string) error {
	if !s.configured() || !format.Signable() {
		return nil
	}

	passphrase, err := s.passphraseFor("GPG passphrase for " + s.cfg.GPGName + ": ")
	if err != nil {
		return err
	}

	keyName := stagingDir + "/signing-key.asc"
	key, err := os.ReadFile(s.cfg.GPGKey)
	if err != nil {
		return errctx.Wrap(ErrSign, err)
	}
	if err := stageFile(ctx, ctr, stagingDir, "signing-key.asc", key); err != nil {
		return err
	}

	importRes, err := ctr.ExecArgs(ctx, nil, "", "gpg", "--batch", "--import", keyName)
	if err != nil {
		return errctx.Wrap(ErrSign, err)
	}
	if importRes.ExitCode != 0 {
		return errctx.Wrapf(ErrSign, "gpg --import: exit code %d: %s", importRes.ExitCode, importRes.Stderr)
	}

	switch format {
	case FormatRPM:
		r, err := ctr.ExecArgs(ctx,
			[]string{"GPG_PASSPHRASE=" + passphrase},
			"", "rpm", "--define", "_gpg_name "+s.cfg.GPGName, "--addsign", containerPath)
		if err != nil {
			return errctx.Wrap(ErrSign, err)
		}
		if r.ExitCode != 0 {
			return errctx.Wrapf(ErrSign, "rpm --addsign: exit code %d: %s", r.ExitCode, r.Stderr)
		}
	case FormatDeb:
		r, err := ctr.ExecArgs(ctx,
			[]string{"GPG_PASSPHRASE=" + passphrase},
			"", "dpkg-sig", "--sign", "builder", "-k", s.cfg.GPGName, containerPath)
		if err != nil {
			return errctx.Wrap(ErrSign, err)
		}
		if r.ExitCode != 0 {
			return errctx.Wrapf(ErrSign, "dpkg-sig: exit code %d: %s", r.ExitCode, r.Stderr)
		}
	}
	return nil
}
