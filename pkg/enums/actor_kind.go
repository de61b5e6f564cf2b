package enums

// ActorKind separates manager accounts from employee accounts.
type ActorKind string

const (
	ActorKindManager  ActorKind = "manager"
	ActorKindEmployee ActorKind = "employee"
)

// String implements fmt.Stringer.
func (k ActorKind) String() string {
	return string(k)
}
