// Package access is the single place role rules live. Controllers build a
// Caller from the verified JWT and services consult it; nothing else
// branches on the staff flag.
package access

// Caller is the authenticated identity attached to a request.
type Caller struct {
	UserID int64
	Staff  bool
}

// CanWriteCatalog reports whether the caller may create, update or
// delete books. Catalog reads are open to everyone.
func (c Caller) CanWriteCatalog() bool { return c.Staff }

// BorrowingScope resolves which user's borrowings the caller may list.
// requested is the optional ?user_id= target. Staff get the target as
// given (nil = everyone); everyone else is pinned to their own rows, the
// requested value is dropped without error.
func (c Caller) BorrowingScope(requested *int64) *int64 {
	if c.Staff {
		return requested
	}
	own := c.UserID
	return &own
}

// CanActOnBorrowing reports whether the caller may mutate or return the
// borrowing owned by ownerID.
func (c Caller) CanActOnBorrowing(ownerID int64) bool {
	return c.Staff || c.UserID == ownerID
}
