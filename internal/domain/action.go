package domain

// Action represents the type of command the strategy hands to the dispatcher.
type Action int

const (
	ActionPlaceLimit Action = iota
	ActionCancel
)

// action string constants to avoid magic strings
const (
	actionStringPlaceLimit = "place_limit"
	actionStringCancel     = "cancel"
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionPlaceLimit:
		return actionStringPlaceLimit
	case ActionCancel:
		return actionStringCancel
	default:
		return "unknown"
	}
}

// Side order side.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// IsValid checks if the Side value is valid.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// TimeInForce order lifetime policy.
type TimeInForce string

const (
	// TimeInForceGTC good till cancelled.
	TimeInForceGTC TimeInForce = "GTC"
	// TimeInForceIOC immediate or cancel.
	TimeInForceIOC TimeInForce = "IOC"
	// TimeInForceFOK fill or kill.
	TimeInForceFOK TimeInForce = "FOK"
)
