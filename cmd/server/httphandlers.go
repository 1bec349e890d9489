package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"example.com/socialfeed/internal/models"
	"example.com/socialfeed/internal/social"
	"github.com/gin-gonic/gin"
)

// --- Views ---

func userView(u *social.User) models.User {
	return models.User{
		ID:                   u.ID(),
		Followings:           u.Followings(),
		Followers:            u.Followers(),
		NewsFeed:             u.NewsFeed(),
		PositivityPercentage: u.PositivityPercentage(),
		Created:              u.CreationTime(),
		LastUpdated:          u.LastUpdateTime(),
	}
}

func groupView(g *social.Group) models.Group {
	members := g.Members()
	out := models.Group{
		ID:      g.ID(),
		Members: make([]models.Member, 0, len(members)),
		Created: g.CreationTime(),
	}
	for _, m := range members {
		kind := "user"
		if _, ok := m.(*social.Group); ok {
			kind = "group"
		}
		out.Members = append(out.Members, models.Member{ID: m.MemberID(), Kind: kind})
	}
	return out
}

func notFound(c *gin.Context, what, id string) {
	err := fmt.Errorf("%s %s: %w", what, strconv.Quote(id), social.ErrNotFound)
	c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
}

// linkStatus maps an error from Follow, Unfollow or AddMember to a status code.
func linkStatus(err error) int {
	switch {
	case errors.Is(err, social.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, social.ErrForeignUser):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// lookupUser writes a 404 and returns false when id is unknown.
func (s *Server) lookupUser(c *gin.Context, id string) (*social.User, bool) {
	u, ok := s.registry.GetUser(id)
	if !ok {
		notFound(c, "user", id)
	}
	return u, ok
}

// --- Users ---

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

// createUserHandler handles POST /users.
// Expects JSON body: {"id": "alice"}
// An existing user with the same id is replaced.
func (s *Server) createUserHandler(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logg.Info("http/users", "Invalid create user request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	u := s.registry.AddUser(req.ID)
	logg.Info("http/users", "User created with id="+req.ID)
	c.JSON(http.StatusCreated, userView(u))
}

func (s *Server) listUsersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": s.registry.UserIDs()})
}

func (s *Server) getUserHandler(c *gin.Context) {
	u, ok := s.lookupUser(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userView(u))
}

// followHandler handles POST /users/:id/follow.
// Expects JSON body: {"followee_id": "bob"}
func (s *Server) followHandler(c *gin.Context) {
	var req struct {
		FolloweeID string `json:"followee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "followee_id is required"})
		return
	}

	u, ok := s.lookupUser(c, c.Param("id"))
	if !ok {
		return
	}
	followee, ok := s.lookupUser(c, req.FolloweeID)
	if !ok {
		return
	}

	if err := u.Follow(followee); err != nil {
		logg.Error("http/follow", "Failed to follow", err)
		c.JSON(linkStatus(err), gin.H{"error": err.Error()})
		return
	}

	logg.Info("http/follow", "User "+u.ID()+" followed "+followee.ID())
	c.JSON(http.StatusOK, gin.H{"followings": u.Followings()})
}

// unfollowHandler handles DELETE /users/:id/follow/:followee.
func (s *Server) unfollowHandler(c *gin.Context) {
	u, ok := s.lookupUser(c, c.Param("id"))
	if !ok {
		return
	}
	followee, ok := s.lookupUser(c, c.Param("followee"))
	if !ok {
		return
	}

	if err := u.Unfollow(followee); err != nil {
		logg.Error("http/follow", "Failed to unfollow", err)
		c.JSON(linkStatus(err), gin.H{"error": err.Error()})
		return
	}

	logg.Info("http/follow", "User "+u.ID()+" unfollowed "+followee.ID())
	c.JSON(http.StatusOK, gin.H{"followings": u.Followings()})
}

// createPostHandler handles POST /users/:id/posts and fans the post out to
// every follower before responding.
// Expects JSON body: {"body": "post content"}
func (s *Server) createPostHandler(c *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is required"})
		return
	}

	u, ok := s.lookupUser(c, c.Param("id"))
	if !ok {
		return
	}

	entry := u.Post(req.Body)
	logg.Info("http/posts", "Post created by user_id="+u.ID())
	c.JSON(http.StatusCreated, models.Post{AuthorID: u.ID(), Body: req.Body, Entry: entry})
}

// getFeedHandler handles GET /users/:id/feed.
// Query parameters: ?limit=50 returns only the most recent entries, oldest first.
func (s *Server) getFeedHandler(c *gin.Context) {
	u, ok := s.lookupUser(c, c.Param("id"))
	if !ok {
		return
	}

	feed := u.NewsFeed()
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(feed) {
			feed = feed[len(feed)-l:]
		}
	}
	c.JSON(http.StatusOK, gin.H{"news_feed": feed})
}

// --- Groups ---

// createGroupHandler handles POST /groups.
// Expects JSON body: {"id": "cs356"}
func (s *Server) createGroupHandler(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	g := s.registry.AddGroup(req.ID)
	logg.Info("http/groups", "Group created with id="+req.ID)
	c.JSON(http.StatusCreated, groupView(g))
}

func (s *Server) listGroupsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": s.registry.GroupIDs()})
}

func (s *Server) getGroupHandler(c *gin.Context) {
	g, ok := s.registry.GetGroup(c.Param("id"))
	if !ok {
		notFound(c, "group", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, groupView(g))
}

// addMemberHandler handles POST /groups/:id/members.
// Expects exactly one of {"user_id": "alice"} or {"group_id": "lab"}.
func (s *Server) addMemberHandler(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id"`
		GroupID string `json:"group_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.UserID == "") == (req.GroupID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of user_id or group_id is required"})
		return
	}

	g, ok := s.registry.GetGroup(c.Param("id"))
	if !ok {
		notFound(c, "group", c.Param("id"))
		return
	}

	var member social.Member
	if req.UserID != "" {
		u, ok := s.lookupUser(c, req.UserID)
		if !ok {
			return
		}
		member = u
	} else {
		sub, ok := s.registry.GetGroup(req.GroupID)
		if !ok {
			notFound(c, "group", req.GroupID)
			return
		}
		member = sub
	}

	if err := g.AddMember(member); err != nil {
		logg.Error("http/groups", "Failed to add member", err)
		c.JSON(linkStatus(err), gin.H{"error": err.Error()})
		return
	}
	logg.Info("http/groups", "Member "+member.MemberID()+" added to group "+g.ID())
	c.JSON(http.StatusOK, groupView(g))
}

// --- Stats ---

// statsHandler reports the registry aggregates shown on the admin panel.
func (s *Server) statsHandler(c *gin.Context) {
	stats := models.Stats{
		TotalUsers:         s.registry.TotalUsers(),
		TotalGroups:        s.registry.TotalGroups(),
		TotalMessages:      s.registry.TotalMessages(),
		PositivePercentage: s.registry.GlobalPositivityPercentage(),
		IDsValid:           true,
	}

	var invalid *social.InvalidIDError
	if err := s.registry.ValidateIDs(); errors.As(err, &invalid) {
		stats.IDsValid = false
		stats.InvalidID = invalid.Error()
	}
	if id, ok := s.registry.LastUpdatedUser(); ok {
		stats.LastUpdatedUser = id
	}

	c.JSON(http.StatusOK, stats)
}
