package e2e

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skriptik666-dev/flick-messenger/internal/apitest"
	"github.com/skriptik666-dev/flick-messenger/internal/client"
)

func TestEndToEnd(t *testing.T) {
	// 1. Setup Server
	ts := apitest.NewServer()
	defer ts.Close()

	t.Setenv("FLICK_AUTH_URL", ts.URL)
	t.Setenv("FLICK_API_URL", ts.URL)
	t.Setenv("FLICK_LOCAL_SEND_DELAY", "10ms")
	t.Setenv("FLICK_UPLOAD_FALLBACK_DELAY", "10ms")
	t.Setenv("FLICK_LOG_LEVEL", "error")

	// 2. Setup Client Configs
	aliceDir := t.TempDir()
	bobDir := t.TempDir()

	// Helper to run client commands
	runCmd := func(configDir string, args ...string) (string, error) {
		configFile := filepath.Join(configDir, "config.json")

		// We need to capture stdout
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		// Cobra flags persist between runs, so --config is passed every time
		// and initConfig reloads the file.
		cmd := client.GetRootCmd()
		cmd.SetArgs(append(args, "--config", configFile))
		err := cmd.Execute()

		_ = w.Close()
		os.Stdout = oldStdout

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		return buf.String(), err
	}

	expect := func(output, want string) {
		t.Helper()
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}

	// 3. Alice and Bob sign up
	output, err := runCmd(aliceDir, "signup", "alice@example.com", "alice", "pw")
	if err != nil {
		t.Fatalf("Alice signup failed: %v", err)
	}
	expect(output, "Friend code:")

	if _, err := runCmd(bobDir, "signup", "bob@example.com", "bob", "pw"); err != nil {
		t.Fatalf("Bob signup failed: %v", err)
	}
	bob, ok := ts.Storage.FindByEmail("bob@example.com")
	if !ok {
		t.Fatal("Bob not registered on the server")
	}

	// 4. Alice starts a chat with Bob's friend code
	output, err = runCmd(aliceDir, "new-chat", bob.FriendCode, "Hello", "Bob!")
	if err != nil {
		t.Fatalf("Alice new-chat failed: %v", err)
	}
	expect(output, "Chat with bob started")
	expect(output, "you: Hello Bob!")

	// 5. Bob sees the chat and replies by index
	output, _ = runCmd(bobDir, "chats")
	expect(output, "1. alice")
	expect(output, "Hello Bob!")

	output, _ = runCmd(bobDir, "open", "1")
	expect(output, "alice: Hello Bob!")

	output, _ = runCmd(bobDir, "send", "1", "Hi", "Alice")
	expect(output, "Message sent.")

	// 6. Alice reads the conversation
	_, _ = runCmd(aliceDir, "chats")
	output, _ = runCmd(aliceDir, "open", "1")
	expect(output, "you: Hello Bob!")
	expect(output, "bob: Hi Alice")

	// 7. Profile and theme
	output, _ = runCmd(aliceDir, "profile", "--status", "busy")
	expect(output, "Profile saved.")
	expect(output, "BUSY")

	output, _ = runCmd(aliceDir, "theme", "dark")
	expect(output, "Theme set to dark")

	// 8. Demo contacts work even though the server does not know them
	output, _ = runCmd(bobDir, "new-chat", "54321", "hey")
	expect(output, "demo chat")
	expect(output, "you: hey")

	// 9. Unknown friend codes fail gracefully
	output, _ = runCmd(bobDir, "new-chat", "99999")
	expect(output, "Could not start a chat with 99999")

	// 10. Logout
	_, _ = runCmd(aliceDir, "logout")
	output, _ = runCmd(aliceDir, "whoami")
	expect(output, "not logged in")
}
