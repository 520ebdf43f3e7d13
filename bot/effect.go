package bot

// Target selects which transport an effect is sent through.
type Target int

const (
	// TargetChat sends to the origin Twitch channel.
	TargetChat Target = iota
	// TargetSecondary posts to the configured Discord channel.
	TargetSecondary
)

// Effect describes one outbound send. The executor only produces effects;
// the dispatch loop owns the transports, which keeps command logic testable
// without network access.
type Effect struct {
	Target  Target
	Channel string
	Text    string
}
