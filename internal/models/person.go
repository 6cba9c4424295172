package models

type PersonKind string

const (
	KindUser  PersonKind = "user"
	KindGuest PersonKind = "guest"
)

// Person is a registered user or a guest contact. Both render the same way;
// Kind tells which collection the ID belongs to.
type Person struct {
	ID    ID         `json:"id"`
	Kind  PersonKind `json:"kind"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Color string     `json:"color"`
}

// Identity is the logged-in user persisted with the session.
type Identity struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Color string `json:"color"`
}
