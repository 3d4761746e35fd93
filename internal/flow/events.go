package flow

// EventKind distinguishes the two inbound event shapes the transport delivers.
type EventKind string

const (
	// EventFreeText is a plain text message from the user.
	EventFreeText EventKind = "free_text"
	// EventButton is an inline keyboard press carrying a token.
	EventButton EventKind = "button"
)

// Event is one inbound user action, already stripped of transport details.
type Event struct {
	Kind  EventKind
	Text  string
	Token string
}

// FreeText wraps a text message into an Event.
func FreeText(text string) Event {
	return Event{Kind: EventFreeText, Text: text}
}

// ButtonPress wraps a callback token into an Event.
func ButtonPress(token string) Event {
	return Event{Kind: EventButton, Token: token}
}

// Choice is one inline keyboard button the renderer should display.
type Choice struct {
	Label string
	Token string
}

// Reply is one outbound message: text plus optional keyboard rows.
type Reply struct {
	Text    string
	Choices [][]Choice
}
