package rest

import (
	"net/http"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/media"
	"github.com/gin-gonic/gin"
)

type credentialsInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// register accepts JSON, or a multipart form with an optional "avatar" image.
func (s *HTTPServer) register(c *gin.Context) {
	var in credentialsInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	avatar := common.DefaultAvatar
	if isMultipart(c) {
		att, err := s.saveUpload(c, "avatar", media.KindImage, false)
		if err != nil {
			s.writeError(c, err)
			return
		}
		if att != nil {
			avatar = att.Path
		}
	}

	user, err := s.users.Register(c.Request.Context(), in.Username, in.Password, avatar)
	if err != nil {
		if avatar != common.DefaultAvatar {
			s.discard(c, avatar)
		}
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.newUserView(c.Request.Context(), user))
}

func (s *HTTPServer) login(c *gin.Context) {
	var in credentialsInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.users.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": sess.Token,
		"user":  s.newUserView(c.Request.Context(), sess.User),
	})
}

func (s *HTTPServer) logout(c *gin.Context) {
	s.users.Logout(c.Request.Context(), currentSession(c))
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) me(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.newUserView(c.Request.Context(), user))
}

func (s *HTTPServer) updateAvatar(c *gin.Context) {
	att, err := s.saveUpload(c, "avatar", media.KindImage, true)
	if err != nil {
		s.writeError(c, err)
		return
	}

	user, err := s.users.UpdateAvatar(c.Request.Context(), currentUser(c), att.Path)
	if err != nil {
		s.discard(c, att.Path)
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.newUserView(c.Request.Context(), user))
}
