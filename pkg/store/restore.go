package store

import storeerrors "versionedstore/pkg/errors"

// ChangelogRecord is the shape a log-replay restore path would hand to
// RestoreBatch: a raw (key, value) pair read off a changelog, paired with
// its original event timestamp. The source this module is modeled on
// declares a restoreBatch override that unconditionally throws
// "not yet implemented"; this module preserves the same shape on the
// facade without wiring it to any replay mechanism, which is out of
// scope here.
type ChangelogRecord struct {
	Key       []byte
	Value     []byte
	Timestamp int64
}

// RestoreBatch always fails: restore-from-log is not implemented.
func (s *Store) RestoreBatch(records []ChangelogRecord) error {
	return storeerrors.ErrRestoreNotImplemented
}
