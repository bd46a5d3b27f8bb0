package transport

import "time"

// Constants for default backend configuration.
const (
	// DefaultAuthURL is the default base URL of the auth API.
	DefaultAuthURL = "http://localhost:8082"
	// DefaultAPIURL is the default base URL of the chat/message/user API.
	DefaultAPIURL = "http://localhost:8083"
)

// Endpoint paths relative to the auth base URL.
const (
	PathLogin  = "/auth/login"
	PathSignup = "/auth/signup"
	PathAuthMe = "/auth/me"
	PathMe     = "/me" // older deployments only expose this one
)

// Endpoint paths relative to the data base URL.
const (
	PathChat    = "/chat"
	PathMessage = "/message"
	PathUser    = "/user/"
	PathPing    = "/ping"
)

// Simulated latencies used when there is no backend to talk to.
const (
	DefaultLocalSendDelay      = 500 * time.Millisecond
	DefaultUploadFallbackDelay = time.Second
)
