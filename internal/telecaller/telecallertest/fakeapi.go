// Package telecallertest provides an in-process fake of the CRM REST API for
// tests. It records every write and lets tests hold back list responses to
// reproduce out-of-order arrivals.
package telecallertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"telecrm/internal/telecaller/transport"
	"telecrm/platform/config"
	"telecrm/platform/httpkit"
	"telecrm/platform/logger"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie the fake login sets.
const SessionCookie = "token"

// ClosedCall is a recorded POST /telecaller/calls/:id/close.
type ClosedCall struct {
	LeadID string
	Body   map[string]any
}

// Punch is a recorded POST /attendance.
type Punch struct {
	Action string
	Date   string
}

// FakeAPI is a gin-backed fake of the API.
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	lists       map[string][]transport.Lead
	counts      *transport.Counts
	previous    map[string]*transport.OutcomeRecord
	gates       map[string]chan struct{}
	failures    map[string]failure
	closed      []ClosedCall
	renamed     map[string]string
	punches     []Punch
	attendance  []map[string]any
	script      map[string]any
	token       string
	requests    map[string]int
	credentials map[string]string
}

type failure struct {
	status  int
	message string
}

// New starts a fake API server closed on test cleanup.
func New(t testing.TB) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		lists:       make(map[string][]transport.Lead),
		previous:    make(map[string]*transport.OutcomeRecord),
		gates:       make(map[string]chan struct{}),
		failures:    make(map[string]failure),
		renamed:     make(map[string]string),
		requests:    make(map[string]int),
		credentials: make(map[string]string),
		counts:      &transport.Counts{},
	}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

// Config returns a configuration pointing at the fake.
func (f *FakeAPI) Config() *config.Config {
	return &config.Config{
		Env:            "test",
		APIBaseURL:     f.Server.URL + "/api",
		APIRateLimit:   0,
		APIRateBurst:   1,
		AuthCookieName: SessionCookie,
		PhoneRegion:    "IN",
	}
}

// Client returns a JSON client for the fake.
func (f *FakeAPI) Client(opts ...httpkit.Option) *httpkit.Client {
	return httpkit.New(f.Config(), logger.Nop(), opts...)
}

// SetList sets the leads returned for a bucket.
func (f *FakeAPI) SetList(bucket string, leads ...transport.Lead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[bucket] = leads
}

// SetCounts sets the counts payload; nil makes the server answer {counts:null}.
func (f *FakeAPI) SetCounts(c *transport.Counts) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = c
}

// SetPrevious sets the previous-call record for a lead.
func (f *FakeAPI) SetPrevious(leadID string, rec *transport.OutcomeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previous[leadID] = rec
}

// SetScript sets the active script; nil means no active script.
func (f *FakeAPI) SetScript(title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = map[string]any{"title": title, "body": body}
}

// AddUser registers credentials accepted by POST /auth/login.
func (f *FakeAPI) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials[email] = password
}

// SetToken sets the session token issued on login and required by /auth/me.
func (f *FakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// Fail makes every request to route answer status with message.
// Route keys are "METHOD /path-pattern", e.g. "POST /telecaller/calls/:id/close".
func (f *FakeAPI) Fail(route string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{status: status, message: message}
}

// Recover removes an injected failure.
func (f *FakeAPI) Recover(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, route)
}

// Hold makes list requests for bucket block until Release is called.
func (f *FakeAPI) Hold(bucket string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[bucket] = make(chan struct{})
}

// Release unblocks held list requests for bucket.
func (f *FakeAPI) Release(bucket string) {
	f.mu.Lock()
	gate, ok := f.gates[bucket]
	delete(f.gates, bucket)
	f.mu.Unlock()
	if ok {
		close(gate)
	}
}

// Closed returns the recorded close-call bodies.
func (f *FakeAPI) Closed() []ClosedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ClosedCall, len(f.closed))
	copy(out, f.closed)
	return out
}

// Renamed returns the last name received for a lead and whether one was received.
func (f *FakeAPI) Renamed(leadID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.renamed[leadID]
	return name, ok
}

// Punches returns the recorded attendance punches.
func (f *FakeAPI) Punches() []Punch {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Punch, len(f.punches))
	copy(out, f.punches)
	return out
}

// Requests returns how many requests hit route.
func (f *FakeAPI) Requests(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[route]
}

func (f *FakeAPI) router() *gin.Engine {
	r := gin.New()
	r.Use(f.track())

	api := r.Group("/api")
	api.POST("/auth/login", f.login)
	api.POST("/auth/logout", f.logout)
	api.GET("/auth/me", f.me)

	tc := api.Group("/telecaller")
	tc.GET("/counts", f.getCounts)
	tc.GET("/assigned", f.list("assigned"))
	tc.GET("/pending", f.list("pending"))
	tc.GET("/follow-up", f.list("follow-up"))
	tc.GET("/converted", f.list("converted"))
	tc.POST("/calls/:id/close", f.closeCall)
	tc.GET("/calls/:id/previous-call", f.previousCall)
	tc.PATCH("/calls/:id/name", f.updateName)

	api.GET("/scripts", f.getScript)
	api.GET("/attendance", f.listAttendance)
	api.POST("/attendance", f.punch)

	return r
}

// track counts requests and applies injected failures.
func (f *FakeAPI) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + trimAPI(c.FullPath())

		f.mu.Lock()
		f.requests[route]++
		fail, failing := f.failures[route]
		f.mu.Unlock()

		if failing {
			c.AbortWithStatusJSON(fail.status, gin.H{"message": fail.message})
			return
		}
		c.Next()
	}
}

func trimAPI(path string) string {
	const prefix = "/api"
	if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return path
}

func (f *FakeAPI) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid body"})
		return
	}

	f.mu.Lock()
	want, ok := f.credentials[body.Email]
	token := f.token
	f.mu.Unlock()

	if !ok || want != body.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if token == "" {
		token = "opaque-session"
	}
	http.SetCookie(c.Writer, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"_id": "T1", "name": "Asha", "email": body.Email, "role": "telecaller"}})
}

func (f *FakeAPI) logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (f *FakeAPI) me(c *gin.Context) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"_id": "T1", "name": "Asha", "email": "asha@example.com", "role": "telecaller"}})
}

func (f *FakeAPI) getCounts(c *gin.Context) {
	f.mu.Lock()
	counts := f.counts
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (f *FakeAPI) list(bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		gate := f.gates[bucket]
		f.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				return
			case <-time.After(10 * time.Second):
			}
		}

		f.mu.Lock()
		leads := f.lists[bucket]
		f.mu.Unlock()
		if leads == nil {
			leads = []transport.Lead{}
		}
		c.JSON(http.StatusOK, gin.H{"list": leads})
	}
}

func (f *FakeAPI) closeCall(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid body"})
		return
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid body"})
		return
	}

	f.mu.Lock()
	f.closed = append(f.closed, ClosedCall{LeadID: c.Param("id"), Body: body})
	f.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "Call closed"})
}

func (f *FakeAPI) previousCall(c *gin.Context) {
	f.mu.Lock()
	rec := f.previous[c.Param("id")]
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"previousCall": rec})
}

func (f *FakeAPI) updateName(c *gin.Context) {
	var body struct {
		Name *string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	}

	f.mu.Lock()
	f.renamed[c.Param("id")] = *body.Name
	f.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

func (f *FakeAPI) getScript(c *gin.Context) {
	f.mu.Lock()
	script := f.script
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"script": script})
}

func (f *FakeAPI) listAttendance(c *gin.Context) {
	date := c.Query("date")

	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]map[string]any, 0, len(f.attendance))
	for _, rec := range f.attendance {
		if date == "" || rec["date"] == date {
			list = append(list, rec)
		}
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (f *FakeAPI) punch(c *gin.Context) {
	var body Punch
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var rec map[string]any
	for _, existing := range f.attendance {
		if existing["date"] == body.Date {
			rec = existing
		}
	}
	if rec == nil {
		rec = map[string]any{"date": body.Date}
		f.attendance = append(f.attendance, rec)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	switch body.Action {
	case "in":
		if _, done := rec["punchIn"]; done {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Already punched in today"})
			return
		}
		rec["punchIn"] = now
	case "out":
		if _, in := rec["punchIn"]; !in {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Punch in first"})
			return
		}
		rec["punchOut"] = now
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown action"})
		return
	}
	f.punches = append(f.punches, Punch{Action: body.Action, Date: body.Date})
	c.JSON(http.StatusOK, gin.H{"attendance": rec})
}
