package wizard

// Choice is one selectable menu option: a display label and the opaque token
// delivered back when the user taps it.
type Choice struct {
	Label string
	Token string
}

// Delivery is the outbound chat surface consumed by the engine. All calls are
// synchronous: each must complete (or fail) before the engine proceeds, so
// the prompt/cleanup/attachment ordering of a wizard run is preserved.
type Delivery interface {
	SendText(chatID int64, text string) error
	SendMenu(chatID int64, text string, choices []Choice) error
	// EditAndRemoveMenu strips the inline menu from a previously sent
	// message and deletes it, so stale menus cannot be re-tapped.
	EditAndRemoveMenu(chatID int64, messageID int) error
	SendPhoto(chatID int64, data []byte, filename string) error
	SendFile(chatID int64, data []byte, filename string) error
}
