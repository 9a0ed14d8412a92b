package securitas

import "fmt"

// AlarmState is an alarm panel state as seen in the vendor app.
type AlarmState int

const (
	AlarmInteriorPartial AlarmState = iota
	AlarmInteriorTotal
	AlarmInteriorDisarmed
	AlarmNightArmed
	AlarmExteriorArmed
	AlarmExteriorDisarmed
	AlarmTotalArmed
	AlarmTotalDisarmed
)

var alarmStateNames = map[AlarmState]string{
	AlarmInteriorPartial:  "interior_partial",
	AlarmInteriorTotal:    "interior_total",
	AlarmInteriorDisarmed: "interior_disarmed",
	AlarmNightArmed:       "night_armed",
	AlarmExteriorArmed:    "exterior_armed",
	AlarmExteriorDisarmed: "exterior_disarmed",
	AlarmTotalArmed:       "total_armed",
	AlarmTotalDisarmed:    "total_disarmed",
}

func (s AlarmState) String() string {
	if name, ok := alarmStateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("AlarmState(%d)", int(s))
}

// ParseAlarmState converts the external name of a state back to the
// enum value, for the CLI and the HTTP API.
func ParseAlarmState(name string) (AlarmState, error) {
	for state, n := range alarmStateNames {
		if n == name {
			return state, nil
		}
	}

	return 0, fmt.Errorf("unknown alarm state %q", name)
}

// Panel command strings understood by the API.
const (
	apiArm              = "ARM1"
	apiArmDay           = "ARMDAY1"
	apiArmNight         = "ARMNIGHT1"
	apiArmPeri          = "PERI1"
	apiArmIntAndPeri    = "ARM1PERI1"
	apiDisarm           = "DARM1"
	apiDisarmIntAndPeri = "DARM1DARMPERI"
)

// CommandSet selects which state-to-command table a client uses.  The
// standard table assumes no exterior (perimetral) sensors; the
// perimeter table covers installations that have them.
type CommandSet int

const (
	CommandSetStandard CommandSet = iota
	CommandSetPerimeter
)

var standardCommands = map[AlarmState]string{
	AlarmExteriorArmed:   apiArmPeri,
	AlarmInteriorPartial: apiArmDay,
	AlarmInteriorTotal:   apiArm,
	AlarmNightArmed:      apiArmNight,
	AlarmTotalArmed:      apiArm,
	AlarmTotalDisarmed:   apiDisarm,
}

var perimeterCommands = map[AlarmState]string{
	AlarmExteriorArmed:    apiArmPeri,
	AlarmExteriorDisarmed: apiDisarm,
	AlarmInteriorPartial:  apiArmDay,
	AlarmInteriorTotal:    apiArm,
	AlarmInteriorDisarmed: apiDisarm,
	AlarmNightArmed:       apiArmNight,
	AlarmTotalArmed:       apiArmIntAndPeri,
	AlarmTotalDisarmed:    apiDisarmIntAndPeri,
}

func (cs CommandSet) table() map[AlarmState]string {
	switch cs {
	case CommandSetPerimeter:
		return perimeterCommands
	default:
		return standardCommands
	}
}

// Command maps an alarm state to the vendor command string for this set.
func (cs CommandSet) Command(state AlarmState) (string, error) {
	if cmd, ok := cs.table()[state]; ok {
		return cmd, nil
	}

	return "", fmt.Errorf("alarm state %s is not available in this command set", state)
}
