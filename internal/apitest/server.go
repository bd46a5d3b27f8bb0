package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

type contextKey string

const userContextKey contextKey = "user"

// Handler serves both the auth and the data API.
type Handler struct {
	Storage *Storage

	// OmitProfile makes login and signup answer with a token only.
	OmitProfile bool
	// SendGate, when set, holds every message post until a value arrives.
	SendGate chan struct{}

	mu       sync.Mutex
	failures map[string]int
	hits     map[string]int
	codes    int
}

// NewHandler creates a Handler over storage.
func NewHandler(storage *Storage) *Handler {
	return &Handler{
		Storage:  storage,
		failures: make(map[string]int),
		hits:     make(map[string]int),
		codes:    20000,
	}
}

// Fail makes route ("METHOD /path") answer with status until Recover.
func (h *Handler) Fail(route string, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[route] = status
}

// Recover undoes Fail.
func (h *Handler) Recover(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.failures, route)
}

// Hits returns how many requests route received.
func (h *Handler) Hits(route string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[route]
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server
	Storage *Storage
	Handler *Handler
}

// NewServer starts a fake backend. Close it when done.
func NewServer() *Server {
	storage := NewStorage()
	h := NewHandler(storage)
	return &Server{
		Server:  httptest.NewServer(h),
		Storage: storage,
		Handler: h,
	}
}

// SeedUser registers a user and returns it.
func (s *Server) SeedUser(email, username, password, friendCode string) User {
	return s.Storage.AddUser(User{Email: email, Username: username, Password: password, FriendCode: friendCode})
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if strings.HasPrefix(path, "/user/") {
		path = "/user"
	}
	route := r.Method + " " + path

	h.mu.Lock()
	h.hits[route]++
	status, failing := h.failures[route]
	h.mu.Unlock()
	if failing {
		writeError(w, status, "", "")
		return
	}

	switch route {
	case "GET /ping":
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	case "POST /auth/signup":
		h.Signup(w, r)
	case "POST /auth/login":
		h.Login(w, r)
	case "GET /auth/me":
		h.AuthMiddleware(h.AuthMe)(w, r)
	case "GET /me":
		h.AuthMiddleware(h.Me)(w, r)
	case "PATCH /me":
		h.AuthMiddleware(h.PatchMe)(w, r)
	case "PATCH /user":
		h.AuthMiddleware(h.PatchUser)(w, r)
	case "GET /chat":
		h.AuthMiddleware(h.ListChats)(w, r)
	case "POST /chat":
		h.AuthMiddleware(h.CreateChat)(w, r)
	case "GET /message":
		h.AuthMiddleware(h.ListMessages)(w, r)
	case "POST /message":
		h.AuthMiddleware(h.PostMessage)(w, r)
	default:
		writeError(w, http.StatusNotFound, "", "")
	}
}

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required", "BAD_REQUEST")
		return
	}
	if _, exists := h.Storage.FindByEmail(c.Email); exists {
		writeError(w, http.StatusConflict, "email already registered", "EMAIL_TAKEN")
		return
	}

	h.mu.Lock()
	h.codes++
	code := fmt.Sprintf("%05d", h.codes)
	h.mu.Unlock()

	u := h.Storage.AddUser(User{Email: c.Email, Username: c.Username, Password: c.Password, FriendCode: code})
	h.writeSession(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "BAD_REQUEST")
		return
	}
	u, ok := h.Storage.FindByEmail(c.Email)
	if !ok || u.Password != c.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "INVALID_CREDENTIALS")
		return
	}
	h.writeSession(w, http.StatusOK, u)
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, u User) {
	token := h.Storage.CreateSession(u.ID)
	if h.OmitProfile {
		writeJSON(w, status, map[string]any{"access_token": token})
		return
	}
	writeJSON(w, status, map[string]any{"token": token, "user": u})
}

func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": currentUser(r)})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

type profilePatch struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
	Status   *string `json:"status"`
}

func (h *Handler) applyPatch(w http.ResponseWriter, r *http.Request, u User) (User, bool) {
	var p profilePatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "BAD_REQUEST")
		return User{}, false
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Avatar != nil {
		u.AvatarURL = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Status != nil {
		u.Status = strings.ToLower(*p.Status)
	}
	return h.Storage.AddUser(u), true
}

func (h *Handler) PatchMe(w http.ResponseWriter, r *http.Request) {
	if u, ok := h.applyPatch(w, r, currentUser(r)); ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": u})
	}
}

func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/user/")
	me := currentUser(r)
	if id != me.ID {
		writeError(w, http.StatusForbidden, "cannot edit another user", "FORBIDDEN")
		return
	}
	if u, ok := h.applyPatch(w, r, me); ok {
		writeJSON(w, http.StatusOK, u)
	}
}

func (h *Handler) chatJSON(c Chat) map[string]any {
	members := make([]map[string]any, 0, len(c.Members))
	for _, id := range c.Members {
		if u, ok := h.Storage.GetUser(id); ok {
			members = append(members, map[string]any{"role": "member", "user": u})
		}
	}
	out := map[string]any{
		"id":           c.ID,
		"is_group":     c.IsGroup,
		"members":      members,
		"unread_count": 0,
	}
	if c.Name != "" {
		out["name"] = c.Name
	}
	if msgs := h.Storage.ListMessages(c.ID); len(msgs) > 0 {
		out["last_message"] = msgs[len(msgs)-1]
	}
	return out
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats := h.Storage.ChatsFor(currentUser(r).ID)
	out := make([]map[string]any, 0, len(chats))
	for _, c := range chats {
		out = append(out, h.chatJSON(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": out})
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FriendCode string `json:"friendCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendCode == "" {
		writeError(w, http.StatusBadRequest, "friendCode required", "BAD_REQUEST")
		return
	}
	other, ok := h.Storage.FindByFriendCode(req.FriendCode)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found", "NOT_FOUND")
		return
	}
	c := h.Storage.CreateChat(currentUser(r).ID, other.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"data": h.chatJSON(c)})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := r.URL.Query().Get("chatId")
	if !h.Storage.HasChat(chatID) {
		writeError(w, http.StatusNotFound, "chat not found", "NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, h.Storage.ListMessages(chatID))
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID      string           `json:"chatId"`
		Content     string           `json:"content"`
		Type        string           `json:"type"`
		Attachments []map[string]any `json:"attachments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "BAD_REQUEST")
		return
	}

	if h.SendGate != nil {
		select {
		case <-h.SendGate:
		case <-r.Context().Done():
			return
		}
	}

	m, err := h.Storage.AddMessage(Message{
		ChatID:      req.ChatID,
		SenderID:    currentUser(r).ID,
		Content:     req.Content,
		Type:        req.Type,
		Attachments: req.Attachments,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// AuthMiddleware protects routes by requiring a valid session token.
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization header required", "UNAUTHORIZED")
			return
		}

		// Expect "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization format", "UNAUTHORIZED")
			return
		}

		userID, ok := h.Storage.GetSession(parts[1])
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired session", "UNAUTHORIZED")
			return
		}
		u, ok := h.Storage.GetUser(userID)
		if !ok {
			writeError(w, http.StatusUnauthorized, "user not found", "UNAUTHORIZED")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func currentUser(r *http.Request) User {
	u, _ := r.Context().Value(userContextKey).(User)
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the backend's error shape. Empty message and
// code produce an empty body.
func writeError(w http.ResponseWriter, status int, message, code string) {
	if message == "" && code == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"message": message, "code": code})
}
