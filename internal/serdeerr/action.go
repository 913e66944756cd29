package serdeerr

// Action names the traversal phase an error was raised in.
type Action int8

const (
	Unknown Action = iota
	Serialize
	Deserialize
	Probe
	Consume
	Classify
)

func (a Action) String() string {
	switch a {
	case Serialize:
		return "serialize"
	case Deserialize:
		return "deserialize"
	case Probe:
		return "probe"
	case Consume:
		return "consume"
	case Classify:
		return "classify"
	default:
		return "unknown"
	}
}
