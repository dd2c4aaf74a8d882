// Package errors declares the sentinel errors returned by the store across
// its data-path operations. Everything else a caller might see (a backing
// engine failure, a decode panic on corrupt state) propagates unwrapped.
package errors

import "golang.org/x/xerrors"

var (
	// ErrStoreClosed is returned by any data-path operation against a
	// store that has been closed, or not yet opened.
	ErrStoreClosed = xerrors.New("versioned store is not open")

	// ErrRestoreNotImplemented is returned by Store.RestoreBatch. The
	// restore-from-log path is preserved as an interface shape so a type
	// can satisfy a restore-capable contract, but replaying a changelog
	// into the store is not implemented.
	ErrRestoreNotImplemented = xerrors.New("restore from changelog is not implemented")
)

// Wrap annotates err with msg, preserving it for errors.Is/errors.As.
func Wrap(msg string, err error) error {
	return xerrors.Errorf("%s: %w", msg, err)
}
