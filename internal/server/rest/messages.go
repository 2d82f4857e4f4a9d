package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/media"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/gin-gonic/gin"
)

// postMessageInput is the JSON body for text and poll messages. Files and
// voice recordings come as multipart forms with the same "type" field.
type postMessageInput struct {
	Type     models.MessageKind `json:"type"`
	Message  string             `json:"message"`
	Question string             `json:"question"`
	Options  []string           `json:"options"`
}

type messageActionInput struct {
	Action string `json:"action" binding:"required"`
	Text   string `json:"text"`
}

type voteInput struct {
	Option *int `json:"option" binding:"required"`
}

func (s *HTTPServer) getMessages(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}

	msgs, err := s.rooms.Messages(c.Request.Context(), room.Name, currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, s.newMessageView(c.Request.Context(), m))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *HTTPServer) postMessage(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}

	var payload models.Payload
	var err error
	if isMultipart(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize+(1<<20))
		payload, err = s.multipartPayload(c)
	} else {
		payload, err = jsonPayload(c)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	msg, err := s.rooms.Post(c.Request.Context(), room.Name, currentUser(c), payload)
	if err != nil {
		s.discard(c, uploadedPaths(payload)...)
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.newMessageView(c.Request.Context(), *msg))
}

func jsonPayload(c *gin.Context) (models.Payload, error) {
	var in postMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
	}

	switch in.Type {
	case models.KindText, "":
		return models.TextPayload{Body: in.Message}, nil
	case models.KindPoll:
		return models.PollPayload{Question: in.Question, Options: in.Options}, nil
	default:
		return nil, fmt.Errorf("%w: %q messages need a multipart upload", common.ErrorInvalidPayload, in.Type)
	}
}

func (s *HTTPServer) multipartPayload(c *gin.Context) (models.Payload, error) {
	switch models.MessageKind(c.PostForm("type")) {
	case models.KindText, "":
		att, err := s.saveUpload(c, "file", media.KindFile, false)
		if err != nil {
			return nil, err
		}
		return models.TextPayload{Body: c.PostForm("message"), File: att}, nil

	case models.KindVoice:
		var duration time.Duration
		if raw := c.PostForm("duration"); raw != "" {
			secs, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: duration %q", common.ErrorInvalidPayload, raw)
			}
			duration = time.Duration(secs * float64(time.Second))
		}
		att, err := s.saveUpload(c, "voice", media.KindAudio, true)
		if err != nil {
			return nil, err
		}
		return models.VoicePayload{Path: att.Path, Duration: duration}, nil

	case models.KindPoll:
		return models.PollPayload{Question: c.PostForm("question"), Options: c.PostFormArray("options")}, nil

	default:
		return nil, fmt.Errorf("%w: unknown message type %q", common.ErrorInvalidPayload, c.PostForm("type"))
	}
}

// messageAction handles edit and delete of one message.
func (s *HTTPServer) messageAction(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}

	var in messageActionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch in.Action {
	case "edit":
		msg, err := s.rooms.Edit(ctx, room.Name, currentUser(c), c.Param("id"), in.Text)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.newMessageView(ctx, *msg))
	case "delete":
		if err := s.rooms.Delete(ctx, room.Name, currentUser(c), c.Param("id")); err != nil {
			s.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", in.Action)})
	}
}

func (s *HTTPServer) vote(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}

	var in voteInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poll, err := s.rooms.Vote(c.Request.Context(), room.Name, currentUser(c), c.Param("id"), *in.Option)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}
