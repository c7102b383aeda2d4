package domain

type ResourceType string

const (
	ResourceYLD   ResourceType = "yld"
	ResourceIron  ResourceType = "iron"
	ResourceStone ResourceType = "stone"
	ResourceWood  ResourceType = "wood"
	ResourceFood  ResourceType = "food"
)

// ResourceLabels maps resource types to their display names.
var ResourceLabels = map[ResourceType]string{
	ResourceYLD:   "YLD",
	ResourceIron:  "铁矿",
	ResourceStone: "石材",
	ResourceWood:  "木材",
	ResourceFood:  "粮食",
}

// Label returns the display name, or the raw value for unknown types.
func (r ResourceType) Label() string {
	if l, ok := ResourceLabels[r]; ok {
		return l
	}
	if r == "" {
		return "--"
	}
	return string(r)
}

// ToolStatusNormal is the only tool status eligible for a new mining session.
const ToolStatusNormal = "normal"

type ActionKind string

const (
	ActionStart   ActionKind = "start"
	ActionStop    ActionKind = "stop"
	ActionStopAll ActionKind = "stop_all"
	ActionCollect ActionKind = "collect"
)

// ValidActionKinds is the set of action kinds accepted by the journal.
var ValidActionKinds = map[ActionKind]bool{
	ActionStart:   true,
	ActionStop:    true,
	ActionStopAll: true,
	ActionCollect: true,
}

type ActionResult string

const (
	ResultOK    ActionResult = "ok"
	ResultEmpty ActionResult = "empty"
	ResultError ActionResult = "error"
)
