package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type messageOrigin string

const (
	originLocal  messageOrigin = "local"
	originRemote messageOrigin = "remote"
)

// placeholderID marks the transient "typing" row shown while a reply is
// outstanding. Real messages carry uuids, so the sentinel can never collide.
const placeholderID = "pending-reply"

type chatMessage struct {
	ID     string
	Text   string
	Origin messageOrigin
	SentAt time.Time
}

func (m chatMessage) isPlaceholder() bool {
	return m.ID == placeholderID
}

// submitState tracks one submission at a time. Only stateSubmitting blocks
// admission; resolved and failed record the last settled outcome and accept
// the next submission like idle does.
type submitState int

const (
	stateIdle submitState = iota
	stateSubmitting
	stateResolved
	stateFailed
)

func (s submitState) String() string {
	switch s {
	case stateSubmitting:
		return "submitting"
	case stateResolved:
		return "resolved"
	case stateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// transcript owns the ordered message list. Single writer; the renderer only
// ever sees copies from snapshot.
type transcript struct {
	entries []chatMessage
	state   submitState
}

func newTranscript() *transcript {
	return &transcript{}
}

// begin admits one submission: it trims the input, appends the local-origin
// message and the placeholder, and moves to submitting. Empty input and
// submissions arriving while one is already in flight are no-ops.
func (t *transcript) begin(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || t.state == stateSubmitting {
		return "", false
	}
	now := time.Now()
	t.entries = append(t.entries,
		chatMessage{ID: uuid.NewString(), Text: text, Origin: originLocal, SentAt: now},
		chatMessage{ID: placeholderID, Origin: originRemote, SentAt: now},
	)
	t.state = stateSubmitting
	return text, true
}

// resolve settles the in-flight submission with a remote reply. The
// placeholder goes away and the normalized reply takes its place at the tail.
func (t *transcript) resolve(reply string) {
	t.dropPlaceholder()
	t.entries = append(t.entries, chatMessage{
		ID:     uuid.NewString(),
		Text:   reply,
		Origin: originRemote,
		SentAt: time.Now(),
	})
	t.state = stateResolved
}

// fail settles the in-flight submission without a reply: the placeholder is
// removed and nothing is appended.
func (t *transcript) fail() {
	t.dropPlaceholder()
	t.state = stateFailed
}

func (t *transcript) dropPlaceholder() {
	t.entries = lo.Reject(t.entries, func(m chatMessage, _ int) bool {
		return m.isPlaceholder()
	})
}

func (t *transcript) inFlight() bool {
	return t.state == stateSubmitting
}

func (t *transcript) awaitingReply() bool {
	return lo.ContainsBy(t.entries, chatMessage.isPlaceholder)
}

// snapshot returns a copy for the renderer so later mutations cannot show
// through a retained slice.
func (t *transcript) snapshot() []chatMessage {
	out := make([]chatMessage, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *transcript) size() int {
	return len(t.entries)
}

// reset discards the transcript wholesale and returns to idle.
func (t *transcript) reset() {
	t.entries = nil
	t.state = stateIdle
}
