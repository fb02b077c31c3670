package plan

// ActionType is the closed set of planned mutations. Using a closed enum with
// exhaustive switches makes an unknown action kind unrepresentable.
type ActionType uint8

const (
	DoNothing ActionType = iota
	UpdateRemote
	DeleteRemote
)

var actionTypeNames = []string{
	"DoNothing",
	"UpdateRemote",
	"DeleteRemote",
}

func (a ActionType) String() string {
	return actionTypeNames[a]
}

// Action is one planned mutation of the remote tree, with a human-readable
// reason. Actions are consumed immediately by the executor and never
// persisted.
type Action struct {
	Type   ActionType
	Path   string
	Reason string
}
