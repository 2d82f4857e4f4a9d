package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/timex"
)

// MessageKind discriminates the content carried by a Message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindVoice MessageKind = "voice"
	KindPoll  MessageKind = "poll"
)

// Message is one entry of a room's log. Exactly one of Text, Voice or Poll
// is set and it matches Kind.
type Message struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"type"`
	Author    string      `json:"username"`
	Avatar    string      `json:"avatar"`
	Timestamp time.Time   `json:"timestamp"`
	Role      Role        `json:"role"`

	Edited   bool       `json:"edited,omitempty"`
	EditedAt *time.Time `json:"edit_timestamp,omitempty"`

	Text  *TextContent  `json:"text,omitempty"`
	Voice *VoiceContent `json:"voice,omitempty"`
	Poll  *PollContent  `json:"poll,omitempty"`
}

// Attachment references an uploaded file kept by the media store.
type Attachment struct {
	Name        string `json:"filename"`
	Path        string `json:"path"`
	ContentType string `json:"type"`
}

type TextContent struct {
	Body string      `json:"message"`
	File *Attachment `json:"file,omitempty"`
}

type VoiceContent struct {
	Path     string         `json:"voice_path"`
	Duration timex.Duration `json:"duration"`
}

type PollOption struct {
	Text   string   `json:"text"`
	Votes  int      `json:"votes"`
	Voters []string `json:"voters"`
}

type PollContent struct {
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"total_votes"`
	Voters     []string     `json:"voters"`
}

// HasVoted reports whether username already voted on the poll.
func (p *PollContent) HasVoted(username string) bool {
	return slices.Contains(p.Voters, username)
}

// Vote records username's vote for option i. Callers check HasVoted and the
// option bounds first.
func (p *PollContent) Vote(username string, i int) {
	opt := &p.Options[i]
	opt.Votes++
	opt.Voters = append(opt.Voters, username)
	p.TotalVotes++
	p.Voters = append(p.Voters, username)
}

// CheckShape verifies that the content pointer matching Kind is the only one
// set. It guards against records written by hand or by older code.
func (m *Message) CheckShape() error {
	set := 0
	for _, ok := range []bool{m.Text != nil, m.Voice != nil, m.Poll != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("message %s: expected exactly one content, got %d", m.ID, set)
	}

	switch m.Kind {
	case KindText:
		if m.Text == nil {
			return fmt.Errorf("message %s: text kind without text content", m.ID)
		}
	case KindVoice:
		if m.Voice == nil {
			return fmt.Errorf("message %s: voice kind without voice content", m.ID)
		}
	case KindPoll:
		if m.Poll == nil {
			return fmt.Errorf("message %s: poll kind without poll content", m.ID)
		}
	default:
		return fmt.Errorf("message %s: unknown kind %q", m.ID, m.Kind)
	}
	return nil
}

// Payload is the author-supplied content of a message about to be posted.
// The set of implementations is closed: TextPayload, VoicePayload and
// PollPayload.
type Payload interface {
	Kind() MessageKind
	isPayload()
}

// TextPayload is a text body with an optional attached file.
type TextPayload struct {
	Body string
	File *Attachment
}

// VoicePayload references stored audio. A zero Duration means unknown.
type VoicePayload struct {
	Path     string
	Duration time.Duration
}

// PollPayload is a question with its answer options.
type PollPayload struct {
	Question string
	Options  []string
}

func (TextPayload) Kind() MessageKind  { return KindText }
func (VoicePayload) Kind() MessageKind { return KindVoice }
func (PollPayload) Kind() MessageKind  { return KindPoll }

func (TextPayload) isPayload()  {}
func (VoicePayload) isPayload() {}
func (PollPayload) isPayload()  {}
