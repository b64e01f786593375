package brain

// Activity is the actor's current schedule phase.
type Activity string

const (
	ActivityIdle  Activity = "idle"
	ActivityWork  Activity = "work"
	ActivityMeet  Activity = "meet"
	ActivityRest  Activity = "rest"
	ActivityPanic Activity = "panic"
)

// validActivities is the set of recognised Activity values.
var validActivities = map[Activity]bool{
	ActivityIdle:  true,
	ActivityWork:  true,
	ActivityMeet:  true,
	ActivityRest:  true,
	ActivityPanic: true,
}

// ValidActivity reports whether a is a recognised Activity.
func ValidActivity(a Activity) bool {
	return validActivities[a]
}
