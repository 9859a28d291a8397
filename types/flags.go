package types

// DirtyFlags records which kinds of structural changes an archetype has seen
// since the query caches last observed it.
type DirtyFlags uint8

const (
	FlagNone    DirtyFlags = 0
	FlagAdded   DirtyFlags = 1 << 0
	FlagRemoved DirtyFlags = 1 << 1
	FlagUpdated DirtyFlags = 1 << 2
)

// Has reports whether any of the bits in flag are set.
func (f DirtyFlags) Has(flag DirtyFlags) bool {
	return f&flag != 0
}

// Clear returns f with the bits in flag removed.
func (f DirtyFlags) Clear(flag DirtyFlags) DirtyFlags {
	return f &^ flag
}
