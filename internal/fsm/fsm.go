package fsm

import "fmt"

type State string

type Event string

const (
	StateStart       State = "start"
	StateFetching    State = "fetching"
	StateTranscoding State = "transcoding"
	StateRecognizing State = "recognizing"
	StateEmptyResult State = "empty_result"
	StateEnhancing   State = "enhancing"
	StateDispatching State = "dispatching"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

const (
	EventFetch           Event = "fetch"
	EventFetched         Event = "fetched"
	EventTranscoded      Event = "transcoded"
	EventRecognized      Event = "recognized"
	EventRecognizedEmpty Event = "recognized_empty"
	EventEnhanced        Event = "enhanced"
	EventDispatch        Event = "dispatch"
	EventDispatched      Event = "dispatched"
	EventFail            Event = "fail"
)

// IsTerminal reports whether no further transitions are possible from state.
func IsTerminal(state State) bool {
	return state == StateDone || state == StateFailed
}

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		if IsTerminal(current) {
			return current, invalidTransition(current, event)
		}
		return StateFailed, nil
	}

	switch current {
	case StateStart:
		switch event {
		case EventFetch:
			return StateFetching, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateFetching:
		switch event {
		case EventFetched:
			return StateTranscoding, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscoding:
		switch event {
		case EventTranscoded:
			return StateRecognizing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecognizing:
		switch event {
		case EventRecognized:
			return StateEnhancing, nil
		case EventRecognizedEmpty:
			return StateEmptyResult, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateEmptyResult:
		switch event {
		case EventDispatch:
			return StateDispatching, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateEnhancing:
		switch event {
		case EventEnhanced:
			return StateDispatching, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDispatching:
		switch event {
		case EventDispatched:
			return StateDone, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDone, StateFailed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
