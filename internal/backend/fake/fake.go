// Package fake serves an in memory RBAC backend over HTTP for tests.
package fake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rbacctl/rbacctl/internal/record"
)

// Collection names used by the fake routes.
const (
	Applications = "Application"
	Roles        = "AppsRoles"
	Functions    = "AppsFunctions"
	Rbac         = "Rbac"
	Users        = "User"
	AppAuth      = "AppAuth"
	Facilities   = "facilities"
)

// keyFields identifies the record key of each collection.
var keyFields = map[string]record.Field{
	Applications: record.AppCode,
	Roles:        record.RoleCode,
	Functions:    record.FuncCode,
	Rbac:         record.RbacCode,
	Users:        record.AuthCode,
}

// Call is one request observed by the server.
type Call struct {
	Method string
	Path   string
	Query  string
}

// Server is an httptest server backed by a gin router.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]record.Record
	calls       []Call
	envelope    string
	failures    map[string]int
	sessionName string
}

func NewServer() *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		collections: map[string][]record.Record{},
		failures:    map[string]int{},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// Seed replaces the content of a collection.
func (s *Server) Seed(name string, records ...record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = append([]record.Record{}, records...)
}

// SetEnvelope wraps collection responses in {key: [...]}. Empty serves bare
// arrays.
func (s *Server) SetEnvelope(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = key
}

// Fail makes "METHOD path" answer with status until cleared with status 0.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method+" "+path)
		return
	}
	s.failures[method+" "+path] = status
}

// SetSessionName sets the name returned by the session endpoint. Empty
// answers 401.
func (s *Server) SetSessionName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionName = name
}

func (s *Server) Records(name string) []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.Record{}, s.collections[name]...)
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call{}, s.calls...)
}

// CallCount counts calls with the given method whose path has prefix.
func (s *Server) CallCount(method, prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(s.record, s.inject)

	api := r.Group("/api")
	api.GET("/Session/current", s.session)
	api.GET("/AppsFunctions/byApp/:code", s.functionsByApp)
	api.GET("/Rbac/assigned", s.assigned)
	api.GET("/User/facilities", s.list(Facilities))
	api.GET("/User/byUserId/:id", s.usersByID)
	api.GET("/User/userFacilities", s.userFacilities)
	api.DELETE("/User", s.deleteGrant)
	api.GET("/AppAuth", s.list(AppAuth))

	for name := range keyFields {
		g := api.Group("/" + name)
		g.GET("", s.list(name))
		g.POST("", s.create(name))
		g.GET("/:key", s.get(name))
		g.PUT("/:key", s.update(name))
		g.DELETE("/:key", s.remove(name))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found", "path": c.Request.URL.Path})
	})
	return r
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: c.Request.Method, Path: c.Request.URL.Path, Query: c.Request.URL.RawQuery})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	s.mu.Lock()
	status, ok := s.failures[c.Request.Method+" "+c.Request.URL.Path]
	s.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(status, gin.H{"message": http.StatusText(status)})
		return
	}
	c.Next()
}

func (s *Server) respondList(c *gin.Context, list []record.Record) {
	if list == nil {
		list = []record.Record{}
	}
	s.mu.Lock()
	envelope := s.envelope
	s.mu.Unlock()
	if envelope != "" {
		c.JSON(http.StatusOK, gin.H{envelope: list})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) list(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.respondList(c, s.Records(name))
	}
}

func (s *Server) find(name, key string) (int, record.Record) {
	field := keyFields[name]
	for i, r := range s.collections[name] {
		if field.String(r) == key {
			return i, r
		}
	}
	return -1, nil
}

func (s *Server) get(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		_, r := s.find(name, c.Param("key"))
		s.mu.Unlock()
		if r == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": name + " not found"})
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func (s *Server) create(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload record.Record
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		s.mu.Lock()
		s.collections[name] = append(s.collections[name], payload)
		s.mu.Unlock()
		c.JSON(http.StatusCreated, payload)
	}
}

func (s *Server) update(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload record.Record
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		i, r := s.find(name, c.Param("key"))
		if r == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": name + " not found"})
			return
		}
		for k, v := range payload {
			r[k] = v
		}
		s.collections[name][i] = r
		c.JSON(http.StatusOK, r)
	}
}

func (s *Server) remove(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i, r := s.find(name, c.Param("key"))
		if r == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": name + " not found"})
			return
		}
		s.collections[name] = append(s.collections[name][:i], s.collections[name][i+1:]...)
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) functionsByApp(c *gin.Context) {
	var out []record.Record
	for _, r := range s.Records(Functions) {
		if record.AppCode.String(r) == c.Param("code") {
			out = append(out, r)
		}
	}
	s.respondList(c, out)
}

func (s *Server) assigned(c *gin.Context) {
	codes := []string{}
	for _, r := range s.Records(Rbac) {
		if record.AppCode.String(r) == c.Query("appCode") && record.RoleCode.String(r) == c.Query("roleCode") {
			if fn := record.FuncCode.String(r); fn != "" {
				codes = append(codes, fn)
			}
			codes = append(codes, record.FuncCodes.Strings(r)...)
		}
	}
	c.JSON(http.StatusOK, codes)
}

func (s *Server) usersByID(c *gin.Context) {
	var out []record.Record
	for _, r := range s.Records(Users) {
		if record.UserID.String(r) == c.Param("id") {
			out = append(out, r)
		}
	}
	s.respondList(c, out)
}

func (s *Server) matchesGrant(c *gin.Context, r record.Record) bool {
	if record.UserID.String(r) != c.Query("userId") {
		return false
	}
	if app := c.Query("appCode"); app != "" && record.AppCode.String(r) != app {
		return false
	}
	if role := c.Query("roleCode"); role != "" && record.RoleCode.String(r) != role {
		return false
	}
	return true
}

func (s *Server) userFacilities(c *gin.Context) {
	codes := []string{}
	for _, r := range s.Records(Users) {
		if s.matchesGrant(c, r) {
			codes = append(codes, record.Facilities.Strings(r)...)
		}
	}
	c.JSON(http.StatusOK, codes)
}

func (s *Server) deleteGrant(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.collections[Users][:0]
	removed := 0
	for _, r := range s.collections[Users] {
		if s.matchesGrant(c, r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.collections[Users] = kept
	if removed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "grant not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) session(c *gin.Context) {
	s.mu.Lock()
	name := s.sessionName
	s.mu.Unlock()
	if name == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "no session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"displayName": name})
}
