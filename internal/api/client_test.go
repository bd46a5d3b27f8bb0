package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skriptik666-dev/flick-messenger/internal/apitest"
	"github.com/skriptik666-dev/flick-messenger/internal/config"
	"github.com/skriptik666-dev/flick-messenger/internal/logging"
	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/storage"
)

func testConfig(url string) config.Config {
	cfg := config.Default()
	cfg.AuthURL = url
	cfg.APIURL = url
	cfg.LocalSendDelay = 5 * time.Millisecond
	cfg.UploadFallbackDelay = 5 * time.Millisecond
	return cfg
}

// Helper to setup a client against a fresh fake backend
func setupClient(t *testing.T, opts ...Option) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(testConfig(srv.URL), &MemoryTokens{}, opts...), srv
}

func TestAuthenticate(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")

	sess, err := c.Authenticate(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if sess.Token == "" || sess.User.Username != "alice" {
		t.Errorf("Unexpected session: %+v", sess)
	}
	if c.tokens.Token() != sess.Token {
		t.Error("Expected token to be saved")
	}
	if srv.Handler.Hits("GET /auth/me") != 0 {
		t.Error("Did not expect a profile follow-up")
	}
	if c.Self().ID != sess.User.ID {
		t.Error("Expected session user to be remembered")
	}
}

func TestAuthenticateFollowUpProfile(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	srv.Handler.OmitProfile = true

	sess, err := c.Authenticate(context.Background(), "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if sess.User.Username != "bob" {
		t.Errorf("Expected profile from follow-up, got %+v", sess.User)
	}
	if srv.Handler.Hits("GET /auth/me") != 1 {
		t.Errorf("Expected one /auth/me call, got %d", srv.Handler.Hits("GET /auth/me"))
	}
}

func TestAuthenticateCompatibilityProfile(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	srv.Handler.OmitProfile = true
	srv.Handler.Fail("GET /auth/me", http.StatusNotFound)

	sess, err := c.Authenticate(context.Background(), "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if sess.User.Username != "bob" {
		t.Errorf("Expected profile from /me, got %+v", sess.User)
	}
	if srv.Handler.Hits("GET /me") != 1 {
		t.Errorf("Expected one /me call, got %d", srv.Handler.Hits("GET /me"))
	}
}

func TestAuthenticateNoProfile(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	srv.Handler.OmitProfile = true
	srv.Handler.Fail("GET /auth/me", http.StatusInternalServerError)
	srv.Handler.Fail("GET /me", http.StatusNotFound)

	_, err := c.Authenticate(context.Background(), "bob@example.com", "pw")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if c.tokens.Token() != "" {
		t.Error("Token must not be saved without a profile")
	}
}

func TestAuthenticateBadCredentials(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")

	_, err := c.Authenticate(context.Background(), "alice@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", StatusCode(err))
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("Expected server message, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	c, _ := setupClient(t)

	sess, err := c.Register(context.Background(), "carol@example.com", "carol", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if sess.User.Email != "carol@example.com" || !mapper.ValidFriendCode(sess.User.FriendCode) {
		t.Errorf("Unexpected user: %+v", sess.User)
	}

	_, err = c.Register(context.Background(), "carol@example.com", "carol", "pw")
	if StatusCode(err) != http.StatusConflict {
		t.Errorf("Expected 409 on duplicate signup, got %v", err)
	}
}

func TestMe(t *testing.T) {
	c, srv := setupClient(t)
	if _, err := c.Me(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}

	u := srv.SeedUser("dave@example.com", "dave", "pw", "20004")
	_ = c.tokens.SetToken(srv.Storage.CreateSession(u.ID))

	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.ID != u.ID {
		t.Errorf("Expected %s, got %s", u.ID, me.ID)
	}
}

func TestRequestErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coded":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"BAD_INPUT"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL), nil, WithLogger(logging.Discard()))

	_, err := c.do(context.Background(), http.MethodGet, ts.URL+"/plain", "", nil)
	if err == nil || err.Error() != "API Error: 503 Service Unavailable" {
		t.Errorf("Expected generic message, got %v", err)
	}

	_, err = c.do(context.Background(), http.MethodGet, ts.URL+"/coded", "", nil)
	var re *RequestError
	if !errors.As(err, &re) || re.Code != "BAD_INPUT" || re.Status != http.StatusBadRequest {
		t.Errorf("Expected coded RequestError, got %v", err)
	}
}

func TestListChats(t *testing.T) {
	c, srv := setupClient(t)
	alice := srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	bob := srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	chat := srv.Storage.CreateChat(alice.ID, bob.ID)
	_, _ = srv.Storage.AddMessage(apitest.Message{ChatID: chat.ID, SenderID: bob.ID, Content: "hey", Type: "text"})

	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	chats, ok := c.ListChats(context.Background())
	if !ok || len(chats) != 1 {
		t.Fatalf("Expected 1 chat, got %d (ok=%v)", len(chats), ok)
	}
	if len(chats[0].Participants) != 2 {
		t.Errorf("Expected 2 participants, got %d", len(chats[0].Participants))
	}
	if chats[0].LastMessage == nil || chats[0].LastMessage.Content != "hey" {
		t.Errorf("Expected last message, got %+v", chats[0].LastMessage)
	}
	if other, _ := chats[0].OtherParticipant(alice.ID); other.ID != bob.ID {
		t.Errorf("Expected bob as other participant, got %s", other.ID)
	}
}

func TestListChatsDegrades(t *testing.T) {
	c, srv := setupClient(t)
	srv.Handler.Fail("GET /chat", http.StatusInternalServerError)

	chats, ok := c.ListChats(context.Background())
	if ok {
		t.Error("Expected ok=false on failure")
	}
	if chats == nil || len(chats) != 0 {
		t.Errorf("Expected empty chats, got %#v", chats)
	}
}

func TestCreateChatOnServer(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	bob := srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	chat, err := c.CreateChat(context.Background(), "20002")
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if chat.LocalOnly || c.IsLocal(chat.ID) {
		t.Error("Expected a persisted chat")
	}
	if other, _ := chat.OtherParticipant(c.Self().ID); other.ID != bob.ID {
		t.Errorf("Expected bob, got %+v", other)
	}
}

func TestCreateChatDemoFallback(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	srv.Handler.Fail("POST /chat", http.StatusInternalServerError)

	chat, err := c.CreateChat(context.Background(), "12345")
	if err != nil {
		t.Fatalf("Expected demo fallback, got %v", err)
	}
	if !chat.LocalOnly || !c.IsLocal(chat.ID) {
		t.Error("Expected a local-only chat")
	}
	if len(chat.Participants) != 2 {
		t.Errorf("Expected 2 participants, got %d", len(chat.Participants))
	}

	again, _ := c.CreateChat(context.Background(), "12345")
	if again.ID != chat.ID {
		t.Error("Expected the same local chat for the same demo contact")
	}
}

func TestListChatsIncludesLocalChats(t *testing.T) {
	c, srv := setupClient(t)
	alice := srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	bob := srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	server := srv.Storage.CreateChat(alice.ID, bob.ID)
	srv.Handler.Fail("POST /chat", http.StatusInternalServerError)
	local, err := c.CreateChat(context.Background(), "12345")
	if err != nil {
		t.Fatal(err)
	}

	chats, ok := c.ListChats(context.Background())
	if !ok {
		t.Fatal("Expected ok=true")
	}
	if len(chats) != 2 || chats[0].ID != server.ID || chats[1].ID != local.ID {
		t.Errorf("Expected server chat then local chat, got %+v", chats)
	}

	srv.Handler.Fail("GET /chat", http.StatusInternalServerError)
	chats, ok = c.ListChats(context.Background())
	if ok {
		t.Error("Expected ok=false on failure")
	}
	if len(chats) != 1 || chats[0].ID != local.ID {
		t.Errorf("Expected only the local chat, got %+v", chats)
	}

	_ = c.SignOut()
	if chats, _ := c.ListChats(context.Background()); len(chats) != 0 {
		t.Errorf("Expected no chats after sign out, got %+v", chats)
	}
}

func TestCreateChatUnknownCode(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	_, err := c.CreateChat(context.Background(), "99999")
	if err == nil {
		t.Fatal("Expected error for unknown friend code")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected not-found classification, got %v", err)
	}
	if !errors.Is(err, ErrNotDemo) {
		t.Errorf("Expected demo strategy error in chain, got %v", err)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	srv.SeedUser("bob@example.com", "bob", "pw", "20002")
	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	chat, err := c.CreateChat(context.Background(), "20002")
	if err != nil {
		t.Fatal(err)
	}

	sent, err := c.SendMessage(context.Background(), chat.ID, "hello", models.MessageText, nil)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if sent.ID == "" || sent.ChatID != chat.ID || sent.SenderID != c.Self().ID {
		t.Errorf("Unexpected message: %+v", sent)
	}

	msgs, ok := c.ListMessages(context.Background(), chat.ID)
	if !ok || len(msgs) != 1 || msgs[0].ID != sent.ID {
		t.Errorf("Expected the sent message back, got %+v (ok=%v)", msgs, ok)
	}
}

func TestListMessagesDegrades(t *testing.T) {
	c, srv := setupClient(t)
	srv.Handler.Fail("GET /message", http.StatusBadGateway)

	msgs, ok := c.ListMessages(context.Background(), "some-chat")
	if ok || msgs == nil || len(msgs) != 0 {
		t.Errorf("Expected empty, not ok; got %#v ok=%v", msgs, ok)
	}
}

func TestLocalChatMessages(t *testing.T) {
	c, srv := setupClient(t)
	srv.Handler.Fail("POST /chat", http.StatusInternalServerError)

	chat, err := c.CreateChat(context.Background(), "54321")
	if err != nil {
		t.Fatal(err)
	}

	msgs, ok := c.ListMessages(context.Background(), chat.ID)
	if !ok || len(msgs) != 0 {
		t.Errorf("Expected empty history for a local chat, got %v", msgs)
	}
	if srv.Handler.Hits("GET /message") != 0 {
		t.Error("Local chats must not hit the server")
	}

	start := time.Now()
	m, err := c.SendMessage(context.Background(), chat.ID, "hi", models.MessageText, nil)
	if err != nil {
		t.Fatalf("Local send failed: %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("Expected simulated delay")
	}
	if m.ID == "" || m.Content != "hi" || m.Pending {
		t.Errorf("Unexpected local message: %+v", m)
	}
	if srv.Handler.Hits("POST /message") != 0 {
		t.Error("Local chats must not hit the server")
	}
}

func TestUpdateUser(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	sess, err := c.Authenticate(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}

	bio := "hello there"
	u, err := c.UpdateUser(context.Background(), sess.User.ID, models.UserPatch{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if u.Bio != bio {
		t.Errorf("Expected bio %q, got %q", bio, u.Bio)
	}
	if srv.Handler.Hits("PATCH /me") != 0 {
		t.Error("Did not expect the fallback endpoint")
	}
}

func TestUpdateUserFallback(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	sess, err := c.Authenticate(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	srv.Handler.Fail("PATCH /user", http.StatusMethodNotAllowed)

	name := "alicia"
	u, err := c.UpdateUser(context.Background(), sess.User.ID, models.UserPatch{Username: &name})
	if err != nil {
		t.Fatalf("Expected fallback to succeed, got %v", err)
	}
	if u.Username != name {
		t.Errorf("Expected %s, got %s", name, u.Username)
	}
	if srv.Handler.Hits("PATCH /me") != 1 {
		t.Error("Expected the fallback endpoint to be used")
	}
}

func TestUpdateUserBothFail(t *testing.T) {
	c, srv := setupClient(t)
	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	sess, err := c.Authenticate(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	srv.Handler.Fail("PATCH /user", http.StatusInternalServerError)
	srv.Handler.Fail("PATCH /me", http.StatusInternalServerError)

	name := "x"
	_, err = c.UpdateUser(context.Background(), sess.User.ID, models.UserPatch{Username: &name})
	var pe *ProfileUpdateError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ProfileUpdateError, got %v", err)
	}
	if StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("Expected status to be reachable through the chain, got %d", StatusCode(err))
	}
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, models.Upload) (string, error) { return "", f.err }

type recordingStore struct{ got models.Upload }

func (r *recordingStore) Save(_ context.Context, up models.Upload) (string, error) {
	r.got = up
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(up.Body)
	return "https://cdn.example.com/" + storage.SanitizeName(up.Name), nil
}

func TestUploadUnconfigured(t *testing.T) {
	c, _ := setupClient(t)

	start := time.Now()
	url := c.UploadFile(context.Background(), models.Upload{Name: "voice.webm", ContentType: "audio/webm", Body: strings.NewReader("x")})
	if url != storage.FallbackAudioURL {
		t.Errorf("Expected audio fallback, got %s", url)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fallback took too long: %v", elapsed)
	}
}

func TestUploadFailureFallsBack(t *testing.T) {
	c, _ := setupClient(t, WithObjectStore(failingStore{err: errors.New("cors")}))

	url := c.UploadFile(context.Background(), models.Upload{Name: "cat.png", ContentType: "image/png", Body: strings.NewReader("x")})
	if !strings.HasPrefix(url, storage.FallbackImageURL) {
		t.Errorf("Expected image fallback, got %s", url)
	}
}

func TestAttach(t *testing.T) {
	rec := &recordingStore{}
	c, _ := setupClient(t, WithObjectStore(rec))

	att := c.Attach(context.Background(), models.Upload{Name: "notes.txt", Body: strings.NewReader("plain text body")})
	if att.URL != "https://cdn.example.com/notes.txt" {
		t.Errorf("Unexpected URL %s", att.URL)
	}
	if att.Kind != models.KindFile || !strings.HasPrefix(att.MimeType, "text/plain") {
		t.Errorf("Unexpected kind/mime %s %s", att.Kind, att.MimeType)
	}
	if att.Size != int64(len("plain text body")) {
		t.Errorf("Expected size %d, got %d", len("plain text body"), att.Size)
	}
	if att.ID == "" {
		t.Error("Expected attachment id")
	}
}

func TestAttachUnconfiguredCountsSize(t *testing.T) {
	c, _ := setupClient(t)

	att := c.Attach(context.Background(), models.Upload{Name: "memo.txt", Body: strings.NewReader("never uploaded")})
	if att.URL != storage.FallbackURL(att.MimeType, "memo.txt") {
		t.Errorf("Expected fallback URL, got %s", att.URL)
	}
	if att.Size != int64(len("never uploaded")) {
		t.Errorf("Expected size %d, got %d", len("never uploaded"), att.Size)
	}
}

type sniffCheckingStore struct{ body []byte }

func (s *sniffCheckingStore) Save(_ context.Context, up models.Upload) (string, error) {
	data, err := io.ReadAll(up.Body)
	s.body = data
	return "https://cdn.example.com/" + up.Name, err
}

func TestUploadDeclaredTypeKeepsBody(t *testing.T) {
	rec := &sniffCheckingStore{}
	c, _ := setupClient(t, WithObjectStore(rec))

	url := c.UploadFile(context.Background(), models.Upload{Name: "clip.webm", ContentType: "audio/webm", Body: strings.NewReader("raw audio")})
	if url != "https://cdn.example.com/clip.webm" {
		t.Errorf("Unexpected URL %s", url)
	}
	if string(rec.body) != "raw audio" {
		t.Errorf("Expected body to reach storage intact, got %q", rec.body)
	}
}

func TestPingAndSignOut(t *testing.T) {
	c, srv := setupClient(t)
	if _, err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	srv.SeedUser("alice@example.com", "alice", "pw", "20001")
	if _, err := c.Authenticate(context.Background(), "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := c.SignOut(); err != nil {
		t.Fatal(err)
	}
	if c.tokens.Token() != "" || c.Self().ID != "" {
		t.Error("Expected session to be forgotten")
	}
}
