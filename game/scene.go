// Package game is the gameplay side of the network queues: once per frame
// it drains inbound messages into a set of entities, and reports entities
// the player has come close to.
//
// Rendering and audio stay outside; they observe the scene through Hooks.
package game

import (
	"log/slog"
	"math"

	"github.com/Zereker/duckclient"
)

// FoundRadius is the distance under which the viewpoint finds an entity.
const FoundRadius = 5.0

// Vec3 is a position or an orientation in degrees.
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Len returns the euclidean length of v.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Entity is a duck placed in the world by the server.
type Entity struct {
	ID          int
	Position    Vec3
	Orientation Vec3
	Sound       string
	Found       bool
}

// Source is the consumer side of the inbound queue.
type Source interface {
	TryPop() (duckclient.Message, bool)
}

// Sink is the producer side of the outbound queue.
type Sink interface {
	Push(duckclient.Message)
}

// Hooks are optional observers called from Update, on the game loop.
type Hooks struct {
	OnSpawn   func(Entity)
	OnMove    func(Entity)
	OnFound   func(Entity)
	OnWin     func(playerID int)
	PlaySound func(entityID int, sound string)
	StopSound func(entityID int)
}

// Scene holds the entities known to the client. It is not safe for
// concurrent use: it belongs to the game loop.
type Scene struct {
	in     Source
	out    Sink
	hooks  Hooks
	logger duckclient.Logger
	radius float32

	entities      map[int]*Entity
	order         []int
	winner        int
	hasWinner     bool
	handshakeSent bool
}

// Option configures a Scene.
type Option func(*Scene)

// HooksOption sets the scene observers.
func HooksOption(h Hooks) Option {
	return func(s *Scene) {
		s.hooks = h
	}
}

// LoggerOption sets the logger. slog.Default() is used when not set.
func LoggerOption(l duckclient.Logger) Option {
	return func(s *Scene) {
		s.logger = l
	}
}

// FoundRadiusOption overrides FoundRadius.
func FoundRadiusOption(r float32) Option {
	return func(s *Scene) {
		s.radius = r
	}
}

// HandshakeSentOption tells the scene the transport already announced the
// session, so Start does not push a second Connection.
func HandshakeSentOption() Option {
	return func(s *Scene) {
		s.handshakeSent = true
	}
}

// NewScene creates an empty scene reading from in and reporting to out.
func NewScene(in Source, out Sink, opts ...Option) *Scene {
	s := &Scene{
		in:       in,
		out:      out,
		radius:   FoundRadius,
		entities: make(map[int]*Entity),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Start announces the session unless that was already done.
func (s *Scene) Start() {
	if s.handshakeSent {
		return
	}
	s.out.Push(duckclient.Connection{})
	s.handshakeSent = true
}

// Update runs one frame: it applies every inbound message available right
// now, then reports entities within range of viewpoint. It never blocks
// and returns the number of inbound messages applied.
func (s *Scene) Update(viewpoint Vec3) int {
	n := 0
	for {
		m, ok := s.in.TryPop()
		if !ok {
			break
		}
		s.apply(m)
		n++
	}

	for _, id := range s.order {
		e := s.entities[id]
		if e.Found || viewpoint.Sub(e.Position).Len() >= s.radius {
			continue
		}
		e.Found = true
		s.logger.Info("entity found", "id", e.ID)
		s.out.Push(duckclient.Found{ID: e.ID})
		if s.hooks.StopSound != nil {
			s.hooks.StopSound(e.ID)
		}
		if s.hooks.OnFound != nil {
			s.hooks.OnFound(*e)
		}
	}

	return n
}

func (s *Scene) apply(m duckclient.Message) {
	switch v := m.(type) {
	case duckclient.Duck:
		s.placeDuck(v)
	case duckclient.Win:
		s.winner, s.hasWinner = v.ID, true
		s.logger.Info("player won", "id", v.ID)
		if s.hooks.OnWin != nil {
			s.hooks.OnWin(v.ID)
		}
	default:
		s.logger.Debug("ignoring inbound message", "type", m.Type())
	}
}

func (s *Scene) placeDuck(d duckclient.Duck) {
	pos := Vec3{d.X, d.Y, d.Z}
	rot := Vec3{d.AX, d.AY, d.AZ}

	if e, ok := s.entities[d.ID]; ok {
		e.Position, e.Orientation, e.Sound = pos, rot, d.Sound
		if s.hooks.OnMove != nil {
			s.hooks.OnMove(*e)
		}
		return
	}

	e := &Entity{ID: d.ID, Position: pos, Orientation: rot, Sound: d.Sound}
	s.entities[d.ID] = e
	s.order = append(s.order, d.ID)
	s.logger.Info("entity spawned", "id", e.ID, "x", pos.X, "y", pos.Y, "z", pos.Z)

	if s.hooks.OnSpawn != nil {
		s.hooks.OnSpawn(*e)
	}
	if e.Sound != "" && s.hooks.PlaySound != nil {
		s.hooks.PlaySound(e.ID, e.Sound)
	}
}

// Entities returns a copy of every entity, in spawn order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entities[id])
	}
	return out
}

// Entity returns the entity with the given id.
func (s *Scene) Entity(id int) (Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Remaining returns how many entities have not been found yet.
func (s *Scene) Remaining() int {
	n := 0
	for _, e := range s.entities {
		if !e.Found {
			n++
		}
	}
	return n
}

// Winner returns the winning player, once a Win has been received.
func (s *Scene) Winner() (int, bool) {
	return s.winner, s.hasWinner
}
