package cart

// Identity names the owner of a cart: an authenticated user id or an
// anonymous session key, exactly one of the two. Handlers build it from the
// request; nothing in this package reads ambient request state.
type Identity struct {
	UserID     *int64
	SessionKey *string
}

// UserIdentity returns the identity of an authenticated user.
func UserIdentity(userID int64) Identity {
	return Identity{UserID: &userID}
}

// SessionIdentity returns the identity of an anonymous session.
func SessionIdentity(sessionKey string) Identity {
	return Identity{SessionKey: &sessionKey}
}

// Valid reports whether exactly one side of the identity is populated.
func (i Identity) Valid() bool {
	return (i.UserID != nil) != (i.SessionKey != nil && *i.SessionKey != "")
}
