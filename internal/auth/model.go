package auth

// Identity is stored in the request context after authentication.
type Identity struct {
	Name string
}

// AdminIdentity is the identity of the holder of the admin API key.
var AdminIdentity = Identity{Name: "admin-api"}
