package queue

import "fmt"

// QoS is the quality-of-service class a queue schedules its tasks with.
// Higher classes are preferred by the default Pool when picking ready work.
type QoS int8

const (
	// QoSBackground is for work the user never waits on.
	QoSBackground QoS = iota
	// QoSDefault is the standard class for most tasks.
	QoSDefault
	// QoSUserInteractive is for work that blocks something the user is
	// looking at right now.
	QoSUserInteractive
)

func (q QoS) String() string {
	switch q {
	case QoSBackground:
		return "background"
	case QoSDefault:
		return "default"
	case QoSUserInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Valid checks if the QoS class is one of the defined constants.
func (q QoS) Valid() bool {
	return q >= QoSBackground && q <= QoSUserInteractive
}

// ParseQoS converts a configuration string into a QoS class.
func ParseQoS(s string) (QoS, error) {
	switch s {
	case "background":
		return QoSBackground, nil
	case "default", "":
		return QoSDefault, nil
	case "interactive":
		return QoSUserInteractive, nil
	default:
		return QoSDefault, fmt.Errorf("%w: %q", ErrInvalidQoS, s)
	}
}
