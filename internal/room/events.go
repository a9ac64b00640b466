package room

// Diff returns the transitions between two snapshots.
// Order is light, window, fan. Equal snapshots produce no events.
func Diff(prev, next State) []Event {
	var events []Event

	if prev.LightOn != next.LightOn {
		events = append(events, Event{Type: pick(next.LightOn, EventLightOn, EventLightOff), State: next})
	}
	if prev.WindowOpen != next.WindowOpen {
		events = append(events, Event{Type: pick(next.WindowOpen, EventWindowOpen, EventWindowClosed), State: next})
	}
	if prev.FanOn != next.FanOn {
		events = append(events, Event{Type: pick(next.FanOn, EventFanOn, EventFanOff), State: next})
	}

	return events
}

func pick(on bool, ifOn, ifOff EventType) EventType {
	if on {
		return ifOn
	}
	return ifOff
}
