package rest

import (
	"net/http"

	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/roles"
	"github.com/gin-gonic/gin"
)

type createRoomInput struct {
	Name     string            `json:"name" binding:"required"`
	Type     models.Visibility `json:"type"`
	Password string            `json:"password"`
}

type unlockInput struct {
	Password string `json:"password"`
}

type adminActionInput struct {
	Action models.Action `json:"action" binding:"required"`
	Target string        `json:"target"`
}

func (s *HTTPServer) listOpenRooms(c *gin.Context) {
	user := currentUser(c)
	seq, err := s.rooms.ListOpen(c.Request.Context(), user)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]roomView, 0)
	for room := range seq {
		out = append(out, newRoomView(room, user))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (s *HTTPServer) searchClosedRooms(c *gin.Context) {
	user := currentUser(c)
	found, err := s.rooms.SearchClosed(c.Request.Context(), c.Query("q"), user)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]roomView, 0, len(found))
	for _, room := range found {
		out = append(out, newRoomView(room, user))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (s *HTTPServer) createRoom(c *gin.Context) {
	var in createRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Type == "" {
		in.Type = models.VisibilityOpen
	}

	user := currentUser(c)
	room, err := s.rooms.Create(c.Request.Context(), in.Name, in.Type, in.Password, user)
	if err != nil {
		s.writeError(c, err)
		return
	}

	// The creator never has to type the password they just chose.
	if room.HasPassword() {
		if err := s.rooms.Unlock(c.Request.Context(), currentSession(c), room.Name, user, in.Password); err != nil {
			s.writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, newRoomView(room, user))
}

func (s *HTTPServer) unlockRoom(c *gin.Context) {
	var in unlockInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.rooms.Unlock(c.Request.Context(), currentSession(c), c.Param("room"), currentUser(c), in.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// enter resolves the room in the path and checks ban and password state.
func (s *HTTPServer) enter(c *gin.Context) (*models.Room, bool) {
	room, err := s.rooms.Enter(c.Request.Context(), currentSession(c), c.Param("room"), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return room, true
}

func (s *HTTPServer) getRoom(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newRoomView(room, currentUser(c)))
}

func (s *HTTPServer) adminAction(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}

	var in adminActionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.rooms.AdminAction(c.Request.Context(), room.Name, currentUser(c), in.Action, in.Target); err != nil {
		s.writeError(c, err)
		return
	}

	updated, err := s.rooms.Get(c.Request.Context(), room.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRoomView(updated, currentUser(c)))
}

func (s *HTTPServer) participants(c *gin.Context) {
	room, ok := s.enter(c)
	if !ok {
		return
	}

	list, err := s.rooms.Participants(c.Request.Context(), room.Name, currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	for i := range list {
		list[i].Avatar = s.mediaURL(c.Request.Context(), list[i].Avatar)
	}

	c.JSON(http.StatusOK, gin.H{
		"participants": list,
		"role":         roles.RoleOf(room, currentUser(c)),
	})
}
