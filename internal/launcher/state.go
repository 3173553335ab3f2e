package launcher

type State int

const (
	Created State = iota
	Validated
	Resolved
	Materialized
	Executed
	Submitted
	Done
	Failed
)

var stateNames = map[State]string{
	Created:      "Created",
	Validated:    "Validated",
	Resolved:     "Resolved",
	Materialized: "Materialized",
	Executed:     "Executed",
	Submitted:    "Submitted",
	Done:         "Done",
	Failed:       "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
