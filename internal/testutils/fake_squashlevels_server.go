package testutils

import (
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

//go:embed squashdata
var squashdata embed.FS

const (
	FakePlayerID = 12345
	FakeUsername = "alice@example.com"
	FakePassword = "secret"

	// FakeBrokenPlayerID answers with a body that is not JSON.
	FakeBrokenPlayerID = 666

	sessionCookie = "PHPSESSID"
	sessionValue  = "fake-session"
)

// LoginRequest is what the fake server saw on its last login call.
type LoginRequest struct {
	ContentType string
	UserAgent   string
	Fields      map[string]string
	FieldOrder  []string
}

type FakeSquashLevelsServer struct {
	s *httptest.Server

	mu          sync.Mutex
	lastLogin   *LoginRequest
	playerCalls int
	failing     bool
}

func NewFakeSquashLevelsServer() *FakeSquashLevelsServer {
	f := &FakeSquashLevelsServer{}

	r := chi.NewRouter()
	r.Route("/api/classic", func(r chi.Router) {
		r.Post("/menu_login", f.loginHandler)
		r.Get("/player_detail", f.playerDetailHandler)
	})

	f.s = httptest.NewServer(r)
	return f
}

func (f *FakeSquashLevelsServer) Close() {
	f.s.Close()
}

func (f *FakeSquashLevelsServer) URL() string {
	return f.s.URL
}

// SetFailing makes player_detail answer 503 until reset.
func (f *FakeSquashLevelsServer) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *FakeSquashLevelsServer) LastLogin() *LoginRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLogin
}

func (f *FakeSquashLevelsServer) PlayerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playerCalls
}

func (f *FakeSquashLevelsServer) loginHandler(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	login := &LoginRequest{
		ContentType: r.Header.Get("Content-Type"),
		UserAgent:   r.Header.Get("User-Agent"),
		Fields:      map[string]string{},
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		b, err := io.ReadAll(part)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		login.Fields[part.FormName()] = string(b)
		login.FieldOrder = append(login.FieldOrder, part.FormName())
	}

	f.mu.Lock()
	f.lastLogin = login
	f.mu.Unlock()

	sum := md5.Sum([]byte(FakePassword))
	if login.Fields["email"] == FakeUsername && login.Fields["md5password"] == hex.EncodeToString(sum[:]) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/"})
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"good"}`))
		return
	}

	// The real API answers a bad login with a 200 and an HTML page.
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body>Login failed</body></html>"))
}

func (f *FakeSquashLevelsServer) playerDetailHandler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.playerCalls++
	failing := f.failing
	f.mu.Unlock()

	if failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	if q.Get("format") != "json" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch q.Get("player") {
	case fmt.Sprint(FakePlayerID):
	case fmt.Sprint(FakeBrokenPlayerID):
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>maintenance</html>"))
		return
	default:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","data":{}}`))
		return
	}

	if c, err := r.Cookie(sessionCookie); err == nil && c.Value == sessionValue {
		serveFile(w, "player_authenticated.json")
		return
	}
	serveFile(w, "player_public.json")
}

func serveFile(w http.ResponseWriter, name string) {
	b, err := squashdata.ReadFile(fmt.Sprintf("squashdata/%s", name))
	if err != nil {
		log.Printf("error reading squashdata/%s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
