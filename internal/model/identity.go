package model

// Identity is the verified set of user fields carried by a session token.
type Identity struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Principal is an optional Identity. The zero value is anonymous.
type Principal struct {
	identity      Identity
	authenticated bool
}

// Anonymous returns a principal with no identity.
func Anonymous() Principal {
	return Principal{}
}

// Authenticated returns a principal carrying id.
func Authenticated(id Identity) Principal {
	return Principal{identity: id, authenticated: true}
}

// Identity returns the carried identity and whether one is present.
func (p Principal) Identity() (Identity, bool) {
	return p.identity, p.authenticated
}

// IsAnonymous reports whether no identity was established.
func (p Principal) IsAnonymous() bool {
	return !p.authenticated
}
