// Package realtime implements the presence bus: a per-course registry of
// live WebSocket subscribers that get pushed the day's present-count
// whenever a submission is recorded.
package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Update is the message pushed to every subscriber of a course.
type Update struct {
	Type         string `json:"type"`
	PresentCount int    `json:"presentCount"`
}

// NewAttendanceUpdate builds the wire message sent after a successful submission.
func NewAttendanceUpdate(presentCount int) Update {
	return Update{Type: "attendance_update", PresentCount: presentCount}
}

// Subscriber is a single live connection to a course's presence feed.
type Subscriber struct {
	Channel  chan Update
	CourseID string
}

// Hub keeps a registry of subscribers per course and broadcasts updates to
// them. It owns no persisted state; PresentCount is supplied by the caller.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*Subscriber
	logger      *logrus.Logger
}

// NewHub creates an empty presence bus.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		subscribers: make(map[string][]*Subscriber),
		logger:      logger,
	}
}

// Subscribe registers a new subscriber for a course and returns its handle.
// The caller is responsible for draining Channel until Unsubscribe closes it.
func (h *Hub) Subscribe(courseID string) *Subscriber {
	sub := &Subscriber{
		Channel:  make(chan Update, 4),
		CourseID: courseID,
	}

	h.mu.Lock()
	h.subscribers[courseID] = append(h.subscribers[courseID], sub)
	count := len(h.subscribers[courseID])
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"course_id":   courseID,
		"subscribers": count,
	}).Debug("presence subscriber registered")

	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Idempotent: calling
// it twice on the same handle, or on a handle never registered, is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[sub.CourseID]
	for i, s := range subs {
		if s == sub {
			h.subscribers[sub.CourseID] = append(subs[:i], subs[i+1:]...)
			close(sub.Channel)
			break
		}
	}

	if len(h.subscribers[sub.CourseID]) == 0 {
		delete(h.subscribers, sub.CourseID)
	}
}

// Broadcast delivers presentCount to every live subscriber of courseID.
// Best-effort and non-blocking: a subscriber whose channel is full is skipped
// rather than stalling the broadcaster.
func (h *Hub) Broadcast(courseID string, presentCount int) {
	h.mu.RLock()
	subs := h.subscribers[courseID]
	h.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	update := NewAttendanceUpdate(presentCount)
	for _, sub := range subs {
		select {
		case sub.Channel <- update:
		default:
			h.logger.WithField("course_id", courseID).Warn("presence subscriber channel full, update skipped")
		}
	}
}

// SubscriberCount reports how many subscribers are currently registered for
// a course (for tests and operability endpoints).
func (h *Hub) SubscriberCount(courseID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[courseID])
}
