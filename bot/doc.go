// Package bot contains the chat command engine: the classifier that maps raw
// chat lines onto a closed command set, the executor that runs commands
// against the shared help queue and emits outbound effects, and the dispatch
// loop bridging Twitch IRC to those effects (chat replies, channel
// broadcasts, Discord posts).
//
// The split matters for testing: Parse is a pure function over the
// commandset data, Execute touches only the queue and the injected
// formatter, and Run is the single consumer that owns the transports. A
// failing formatter, queue join, or send degrades to a fallback effect or a
// log line; nothing in this package can stop the loop from handling the next
// message.
//
// Credentials: the IRC client requires a bot username and a user OAuth token
// with chat:read/chat:edit scopes. When TWITCH_OAUTH_TOKEN is not provided,
// main falls back to the stored token from the oauth_tokens table for
// provider "twitch".
package bot
