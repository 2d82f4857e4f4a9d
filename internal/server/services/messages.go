package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/roles"
	"github.com/dmitrijs2005/libertalk/internal/timex"
)

// Messages returns the room's log for actor. Banned users see nothing.
func (s *RoomService) Messages(ctx context.Context, name, actor string) ([]models.Message, error) {
	room, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if room.IsBanned(actor) {
		return nil, common.ErrorBanned
	}
	return room.Messages, nil
}

// Post validates payload, then appends a message stamped with the author's
// current avatar and role.
func (s *RoomService) Post(ctx context.Context, name, author string, payload models.Payload) (*models.Message, error) {
	msg, err := s.buildMessage(payload)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, author)
	if err != nil {
		return nil, err
	}
	msg.Author = user.UserName
	msg.Avatar = user.Avatar

	_, err = s.mutate(ctx, name, func(room *models.Room) error {
		if room.IsBanned(author) {
			return common.ErrorBanned
		}
		msg.ID = s.newID()
		msg.Timestamp = s.now()
		msg.Role = roles.RoleOf(room, author)
		room.Messages = append(room.Messages, *msg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "message posted", "room", name, "username", author, "id", msg.ID, "type", msg.Kind)
	return msg, nil
}

// buildMessage checks the whole payload and returns a message carrying only
// its content.
func (s *RoomService) buildMessage(payload models.Payload) (*models.Message, error) {
	switch p := payload.(type) {
	case models.TextPayload:
		body := strings.TrimSpace(p.Body)
		if body == "" && p.File == nil {
			return nil, fmt.Errorf("%w: empty message", common.ErrorInvalidPayload)
		}
		return &models.Message{Kind: models.KindText, Text: &models.TextContent{Body: body, File: p.File}}, nil

	case models.VoicePayload:
		if strings.TrimSpace(p.Path) == "" {
			return nil, fmt.Errorf("%w: voice message without audio", common.ErrorInvalidPayload)
		}
		d := p.Duration
		if d == 0 {
			d = s.maxVoiceDuration
		}
		if d < 0 || d > s.maxVoiceDuration {
			return nil, fmt.Errorf("%w: voice duration %s exceeds %s", common.ErrorInvalidPayload, p.Duration, s.maxVoiceDuration)
		}
		return &models.Message{Kind: models.KindVoice, Voice: &models.VoiceContent{Path: p.Path, Duration: timex.Duration{Duration: d}}}, nil

	case models.PollPayload:
		question := strings.TrimSpace(p.Question)
		if question == "" {
			return nil, fmt.Errorf("%w: poll without question", common.ErrorInvalidPayload)
		}
		options := make([]models.PollOption, 0, len(p.Options))
		for _, text := range p.Options {
			if text = strings.TrimSpace(text); text != "" {
				options = append(options, models.PollOption{Text: text, Voters: []string{}})
			}
		}
		if len(options) < 2 {
			return nil, fmt.Errorf("%w: poll needs at least two options", common.ErrorInvalidPayload)
		}
		return &models.Message{Kind: models.KindPoll, Poll: &models.PollContent{Question: question, Options: options, Voters: []string{}}}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported message %T", common.ErrorInvalidPayload, payload)
	}
}

// Edit replaces the body of a text message.
func (s *RoomService) Edit(ctx context.Context, name, actor, id, newText string) (*models.Message, error) {
	newText = strings.TrimSpace(newText)

	var edited models.Message
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		i := room.MessageIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: message %s", common.ErrorNotFound, id)
		}
		if !roles.CanModerate(room, actor) {
			return common.ErrorUnauthorized
		}
		msg := &room.Messages[i]
		if msg.Kind != models.KindText {
			return common.ErrorNotEditable
		}
		if newText == "" {
			return fmt.Errorf("%w: empty message", common.ErrorInvalidPayload)
		}

		now := s.now()
		msg.Text.Body = newText
		msg.Edited = true
		msg.EditedAt = &now
		edited = *msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "message edited", "room", name, "actor", actor, "id", id)
	return &edited, nil
}

// Delete removes one message and keeps the order of the rest.
func (s *RoomService) Delete(ctx context.Context, name, actor, id string) error {
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		i := room.MessageIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: message %s", common.ErrorNotFound, id)
		}
		if !roles.CanModerate(room, actor) {
			return common.ErrorUnauthorized
		}
		room.RemoveMessage(i)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "message deleted", "room", name, "actor", actor, "id", id)
	return nil
}

// Vote records voter's one and only vote on a poll.
func (s *RoomService) Vote(ctx context.Context, name, voter, id string, option int) (*models.PollContent, error) {
	var poll models.PollContent
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		i := room.MessageIndex(id)
		if i < 0 || room.Messages[i].Kind != models.KindPoll {
			return fmt.Errorf("%w: poll %s", common.ErrorNotFound, id)
		}
		if room.IsBanned(voter) {
			return common.ErrorBanned
		}
		p := room.Messages[i].Poll
		if p.HasVoted(voter) {
			return common.ErrorAlreadyVoted
		}
		if option < 0 || option >= len(p.Options) {
			return fmt.Errorf("%w: %d", common.ErrorInvalidOption, option)
		}
		p.Vote(voter, option)
		poll = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// Clear empties the room's log.
func (s *RoomService) Clear(ctx context.Context, name, actor string) error {
	_, err := s.mutate(ctx, name, func(room *models.Room) error {
		if !roles.CanModerate(room, actor) {
			return common.ErrorUnauthorized
		}
		room.Messages = []models.Message{}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "chat cleared", "room", name, "actor", actor)
	return nil
}
