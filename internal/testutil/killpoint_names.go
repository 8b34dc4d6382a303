package testutil

// Kill point names follow "Component.Operation:N" where N is 0 before the
// step and 1 after it.
const (
	// KPBlockFileAppend0 fires before a record is written.
	KPBlockFileAppend0 = "BlockFile.Append:0"
	// KPBlockFileAppend1 fires after the record write returns and before the
	// writer advances its offset.
	KPBlockFileAppend1 = "BlockFile.Append:1"
	// KPBlockFileSync0 fires before the handle is synced.
	KPBlockFileSync0 = "BlockFile.Sync:0"
	// KPBlockFileSync1 fires after a successful sync.
	KPBlockFileSync1 = "BlockFile.Sync:1"
)
