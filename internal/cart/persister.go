package cart

import "context"

type ChangeKind int

const (
	ChangeUpsert ChangeKind = iota + 1
	ChangeDelete
	ChangeClear
	ChangeReplace
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeUpsert:
		return "upsert"
	case ChangeDelete:
		return "delete"
	case ChangeClear:
		return "clear"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is one cart mutation handed to a Persister. Snapshot always holds
// the full cart after the mutation, so stores that write whole carts can
// ignore the per-line fields.
type Change struct {
	Kind     ChangeKind
	Line     Line   // ChangeUpsert
	LineID   string // ChangeDelete
	Snapshot []Line
}

// Persister mirrors a cart to durable storage. Owner is a guest id or a
// user id, depending on the store.
type Persister interface {
	// Load returns the persisted lines, or none for an unknown owner.
	Load(ctx context.Context, owner string) ([]Line, error)

	Apply(ctx context.Context, owner string, change Change) error
}
