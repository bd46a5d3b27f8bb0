package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skriptik666-dev/flick-messenger/internal/logging"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// Remote is what the store needs from the backend. *api.Client implements it.
type Remote interface {
	Authenticate(ctx context.Context, email, password string) (models.Session, error)
	Register(ctx context.Context, email, username, password string) (models.Session, error)
	Me(ctx context.Context) (models.User, error)
	SignOut() error
	ListChats(ctx context.Context) ([]models.Chat, bool)
	CreateChat(ctx context.Context, friendCode string) (models.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, bool)
	SendMessage(ctx context.Context, chatID, content string, typ models.MessageType, attachments []models.Attachment) (models.Message, error)
	UpdateUser(ctx context.Context, userID string, patch models.UserPatch) (models.User, error)
	Attach(ctx context.Context, up models.Upload) models.Attachment
}

// Store owns the session state and exposes the user actions.
type Store struct {
	remote Remote
	logger *slog.Logger
	d      *Dispatcher
}

// New creates a signed-out Store.
func New(remote Remote, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		remote: remote,
		logger: logger,
		d:      NewDispatcher(emptyState(), logger),
	}
}

func (s *Store) action(ctx context.Context, name string) (context.Context, *slog.Logger) {
	ctx = logging.WithAction(logging.WithLogger(ctx, s.logger), name)
	return ctx, logging.FromContext(ctx)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State { return s.d.Snapshot() }

// Subscribe calls l with every new state until cancel is called.
func (s *Store) Subscribe(l Listener) (cancel func()) { return s.d.Subscribe(l) }

// Wait blocks until all background work has finished.
func (s *Store) Wait() { s.d.Wait() }

// Login signs in and loads the chat list. A chat list that cannot be
// loaded is left empty.
func (s *Store) Login(ctx context.Context, email, password string) error {
	ctx, log := s.action(ctx, "login")
	sess, err := s.remote.Authenticate(ctx, email, password)
	if err != nil {
		log.Warn("login failed", "email", email, "error", err)
		return err
	}
	s.establish(ctx, sess.User)
	log.Info("user logged in", "username", sess.User.Username)
	return nil
}

// Signup creates an account, signs into it and loads the chat list.
func (s *Store) Signup(ctx context.Context, email, username, password string) error {
	ctx, log := s.action(ctx, "signup")
	sess, err := s.remote.Register(ctx, email, username, password)
	if err != nil {
		log.Warn("signup failed", "email", email, "error", err)
		return err
	}
	s.establish(ctx, sess.User)
	log.Info("user registered", "username", sess.User.Username)
	return nil
}

// Restore re-establishes a session from a saved token.
func (s *Store) Restore(ctx context.Context) error {
	ctx, log := s.action(ctx, "restore")
	u, err := s.remote.Me(ctx)
	if err != nil {
		log.Debug("no session to restore", "error", err)
		return err
	}
	s.establish(ctx, u)
	return nil
}

func (s *Store) establish(ctx context.Context, u models.User) {
	chats, _ := s.remote.ListChats(ctx)
	s.d.Dispatch(ctx, signedIn(u, chats))
}

// Logout clears the session. It never fails.
func (s *Store) Logout(ctx context.Context) {
	ctx, log := s.action(ctx, "logout")
	if err := s.remote.SignOut(); err != nil {
		log.Warn("failed to forget token", "error", err)
	}
	s.d.Dispatch(ctx, signedOut())
}

// SelectChat makes chatID the active chat right away and refreshes its
// messages in the background. A failed refresh keeps what is cached.
func (s *Store) SelectChat(ctx context.Context, chatID string) {
	ctx, _ = s.action(ctx, "select_chat")
	s.d.Dispatch(ctx, chatSelected(chatID, s.loadMessages(chatID)))
}

func (s *Store) loadMessages(chatID string) Effect {
	return func(ctx context.Context) Transition {
		msgs, ok := s.remote.ListMessages(ctx, chatID)
		if !ok {
			logging.FromContext(ctx).Debug("keeping cached messages", "chat_id", chatID)
			return nil
		}
		return messagesLoaded(chatID, msgs)
	}
}

// RefreshChats reloads the chat list. On failure the cached list is kept
// and false is returned.
func (s *Store) RefreshChats(ctx context.Context) bool {
	ctx, _ = s.action(ctx, "refresh_chats")
	chats, ok := s.remote.ListChats(ctx)
	if ok {
		s.d.Dispatch(ctx, chatsLoaded(chats))
	}
	return ok
}

// SendMessage shows the message immediately as pending and delivers it in
// the background. The returned channel receives the outcome once the
// pending message has been confirmed or removed.
func (s *Store) SendMessage(ctx context.Context, chatID, content string, typ models.MessageType, attachments []models.Attachment) <-chan error {
	ctx, _ = s.action(ctx, "send_message")
	if typ == "" {
		typ = models.MessageText
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	sender := s.Snapshot().CurrentUserID()
	if sender == "" {
		sender = models.UnknownSenderID
	}
	localID := uuid.NewString()
	draft := models.Message{
		ID:          localID,
		ChatID:      chatID,
		SenderID:    sender,
		Content:     content,
		Type:        typ,
		Attachments: attachments,
		CreatedAt:   time.Now(),
		ReadBy:      []string{sender},
		LocalID:     localID,
		Pending:     true,
	}

	done := make(chan error, 1)
	deliver := func(ctx context.Context) Transition {
		defer close(done)
		m, err := s.remote.SendMessage(ctx, chatID, content, typ, attachments)
		if err != nil {
			logging.FromContext(ctx).Warn("send failed, removing pending message", "chat_id", chatID, "error", err)
			s.d.Dispatch(ctx, draftFailed(chatID, localID))
		} else {
			s.d.Dispatch(ctx, draftConfirmed(chatID, localID, m))
		}
		done <- err
		return nil
	}
	s.d.Dispatch(ctx, draftAdded(draft, deliver))
	return done
}

// CreateChat starts a chat by friend code, puts it first and selects it.
// It reports false when no chat could be created.
func (s *Store) CreateChat(ctx context.Context, friendCode string) (models.Chat, bool) {
	ctx, log := s.action(ctx, "create_chat")
	chat, err := s.remote.CreateChat(ctx, friendCode)
	if err != nil {
		log.Warn("failed to create chat", "friend_code", friendCode, "error", err)
		return models.Chat{}, false
	}
	s.d.Dispatch(ctx, chatCreated(chat))
	return chat, true
}

// UpdateProfile applies patch to the session user right away and saves it.
// If saving fails the previous profile is put back.
func (s *Store) UpdateProfile(ctx context.Context, patch models.UserPatch) error {
	ctx, log := s.action(ctx, "update_profile")
	prior := s.Snapshot().CurrentUser
	if prior == nil {
		return ErrSignedOut
	}
	merged := patch.Apply(*prior)
	optimistic := &merged
	s.d.Dispatch(ctx, userReplaced(optimistic))

	saved, err := s.remote.UpdateUser(ctx, prior.ID, patch)
	if err != nil {
		log.Warn("profile update failed, restoring", "user_id", prior.ID, "error", err)
		s.d.Dispatch(ctx, userSettled(optimistic, prior))
		return err
	}
	if saved.ID != "" {
		s.d.Dispatch(ctx, userSettled(optimistic, &saved))
	}
	return nil
}

// Attach uploads a file for a message. It never fails.
func (s *Store) Attach(ctx context.Context, up models.Upload) models.Attachment {
	ctx, log := s.action(ctx, "attach")
	att := s.remote.Attach(ctx, up)
	log.Debug("attachment ready", "name", att.Name, "kind", att.Kind, "url", att.URL)
	return att
}

// OpenSettings shows the settings surface.
func (s *Store) OpenSettings(ctx context.Context) { s.d.Dispatch(ctx, settingsToggled(true)) }

// CloseSettings hides the settings surface.
func (s *Store) CloseSettings(ctx context.Context) { s.d.Dispatch(ctx, settingsToggled(false)) }
