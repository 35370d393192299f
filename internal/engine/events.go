package engine

import (
	"time"
)

// Category classifies feed events.
type Category string

const (
	CategoryJoin      Category = "join"
	CategoryLevel     Category = "level"
	CategoryMilestone Category = "milestone"
)

// MaxEvents caps the event feed.
const MaxEvents = 15

// subscriberBuffer is the per-subscriber channel depth. Slow readers miss
// events rather than stall the frame loop.
const subscriberBuffer = 64

// Event is a notable occurrence in the city.
type Event struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
}

// addEvent prepends e to the feed, trims it to MaxEvents and fans it out.
func (s *Simulation) addEvent(e Event) {
	s.events = append([]Event{e}, s.events...)
	if len(s.events) > MaxEvents {
		s.events = s.events[:MaxEvents]
	}
	if s.OnEvents != nil {
		s.OnEvents(s.Events())
	}
	s.publish(e)
}

// Events returns a copy of the feed, newest first.
func (s *Simulation) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Subscribe registers a listener for new events. The channel is closed by
// Unsubscribe.
func (s *Simulation) Subscribe() (int, <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]chan Event)
	}
	s.nextSub++
	ch := make(chan Event, subscriberBuffer)
	s.subs[s.nextSub] = ch
	return s.nextSub, ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Simulation) publish(e Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
