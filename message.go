package duckclient

import "fmt"

// MessageType is the numeric tag leading every encoded frame.
type MessageType int

// Known message tags. TypeUnknown also covers the base tag 0.
const (
	TypeUnknown MessageType = iota
	TypeConnection
	TypeDeconnection
	TypeFound
	TypeDuck
	TypeWin
)

func (t MessageType) String() string {
	switch t {
	case TypeConnection:
		return "connection"
	case TypeDeconnection:
		return "deconnection"
	case TypeFound:
		return "found"
	case TypeDuck:
		return "duck"
	case TypeWin:
		return "win"
	default:
		return "unknown"
	}
}

// known reports whether t names a concrete, decodable message case.
func (t MessageType) known() bool {
	return t >= TypeConnection && t <= TypeWin
}

// DefaultDuckSound is the sound a duck carries when none was given.
const DefaultDuckSound = "default.wav"

// Message is a protocol message. The set of implementations is closed:
// only the types declared in this file satisfy it, and each one reports
// a fixed tag derived from its concrete type.
//
// A Message is owned by exactly one side at a time. Once pushed onto a
// Queue it must not be mutated by the producer.
//
// Messages are not comparable with ==: Unknown carries a byte slice and
// comparing it panics. Use a type switch or reflect.DeepEqual.
type Message interface {
	Type() MessageType
	message()
}

// Connection announces a new client session. It is the handshake.
type Connection struct{}

// Deconnection announces the end of a client session.
type Deconnection struct{}

// Found reports that the local player located the entity ID.
type Found struct {
	ID int
}

// Duck instructs the client to create or move a game entity.
type Duck struct {
	ID         int
	X, Y, Z    float32
	AX, AY, AZ float32
	Sound      string
}

// NewDuck returns a duck at the origin carrying DefaultDuckSound.
func NewDuck(id int) Duck {
	return Duck{ID: id, Sound: DefaultDuckSound}
}

// Win reports that player ID has won.
type Win struct {
	ID int
}

// Unknown is a frame whose tag matched no known case. Tag is the parsed
// tag, or 0 when the tag itself was not a number.
type Unknown struct {
	Tag     int
	Payload []byte
}

func (Connection) Type() MessageType   { return TypeConnection }
func (Deconnection) Type() MessageType { return TypeDeconnection }
func (Found) Type() MessageType        { return TypeFound }
func (Duck) Type() MessageType         { return TypeDuck }
func (Win) Type() MessageType          { return TypeWin }
func (Unknown) Type() MessageType      { return TypeUnknown }

func (Connection) message()   {}
func (Deconnection) message() {}
func (Found) message()        {}
func (Duck) message()         {}
func (Win) message()          {}
func (Unknown) message()      {}

func (m Found) String() string { return fmt.Sprintf("found{id=%d}", m.ID) }
func (m Win) String() string   { return fmt.Sprintf("win{id=%d}", m.ID) }

func (m Duck) String() string {
	return fmt.Sprintf("duck{id=%d pos=(%g,%g,%g) rot=(%g,%g,%g) sound=%q}",
		m.ID, m.X, m.Y, m.Z, m.AX, m.AY, m.AZ, m.Sound)
}

func (m Unknown) String() string {
	return fmt.Sprintf("unknown{tag=%d payload=%q}", m.Tag, m.Payload)
}
