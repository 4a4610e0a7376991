package duckclient

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// Separator delimits the fields of an encoded frame.
const Separator = ';'

// Codec converts between messages and frame payloads.
//
// Decode must not fail on an unrecognised tag: it returns an Unknown
// message instead. Malformed payloads of a known case yield a *ProtocolError.
type Codec interface {
	Encode(Message) ([]byte, error)
	Decode([]byte) (Message, error)
}

// TextCodec is the textual wire format:
//
//	<tag>;<field1>;...;<fieldN>
//
// Found and Win carry "id". Duck carries "id;x;y;z;ax;ay;az;sound"; the
// sound is the last field and runs to the end of the frame, so it may be
// empty or contain the separator. Connection and Deconnection carry no
// fields. Floats are written in the shortest form that round-trips a float32.
type TextCodec struct{}

// fieldCount is the number of fields after the tag for each known case.
var fieldCount = map[MessageType]int{
	TypeConnection:   0,
	TypeDeconnection: 0,
	TypeFound:        1,
	TypeDuck:         8,
	TypeWin:          1,
}

// Encode implements Codec.
func (TextCodec) Encode(m Message) ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = strconv.AppendInt(buf, int64(m.Type()), 10)

	switch v := m.(type) {
	case Connection, Deconnection:
	case Found:
		buf = appendInt(buf, v.ID)
	case Win:
		buf = appendInt(buf, v.ID)
	case Duck:
		buf = appendInt(buf, v.ID)
		for _, f := range [...]float32{v.X, v.Y, v.Z, v.AX, v.AY, v.AZ} {
			buf = append(buf, Separator)
			buf = strconv.AppendFloat(buf, float64(f), 'g', -1, 32)
		}
		buf = append(buf, Separator)
		buf = append(buf, v.Sound...)
	default:
		return nil, errors.Errorf("encode: unsupported message %T", m)
	}

	return buf, nil
}

func appendInt(buf []byte, n int) []byte {
	buf = append(buf, Separator)
	return strconv.AppendInt(buf, int64(n), 10)
}

// Decode implements Codec.
func (TextCodec) Decode(frame []byte) (Message, error) {
	tag, ok := parseTag(frame)
	typ := MessageType(tag)
	if !ok || !typ.known() {
		return Unknown{Tag: tag, Payload: bytes.Clone(frame)}, nil
	}

	n := fieldCount[typ]
	if n == 0 && bytes.IndexByte(frame, Separator) >= 0 {
		return nil, protocolError(frame, 1, errors.New("unexpected field"))
	}
	parts := bytes.SplitN(frame, []byte{Separator}, n+1)
	if len(parts) < n+1 {
		return nil, protocolError(frame, len(parts), errors.New("missing field"))
	}

	switch typ {
	case TypeConnection:
		return Connection{}, nil
	case TypeDeconnection:
		return Deconnection{}, nil
	case TypeFound:
		id, err := parseInt(frame, parts, 1)
		if err != nil {
			return nil, err
		}
		return Found{ID: id}, nil
	case TypeWin:
		id, err := parseInt(frame, parts, 1)
		if err != nil {
			return nil, err
		}
		return Win{ID: id}, nil
	default:
		return decodeDuck(frame, parts)
	}
}

func decodeDuck(frame []byte, parts [][]byte) (Message, error) {
	id, err := parseInt(frame, parts, 1)
	if err != nil {
		return nil, err
	}

	var f [6]float32
	for i := range f {
		v, err := strconv.ParseFloat(string(parts[i+2]), 32)
		if err != nil {
			return nil, protocolError(frame, i+2, errors.Wrap(err, "parse float"))
		}
		f[i] = float32(v)
	}

	return Duck{
		ID: id,
		X:  f[0], Y: f[1], Z: f[2],
		AX: f[3], AY: f[4], AZ: f[5],
		Sound: string(parts[8]),
	}, nil
}

func parseInt(frame []byte, parts [][]byte, field int) (int, error) {
	v, err := strconv.Atoi(string(parts[field]))
	if err != nil {
		return 0, protocolError(frame, field, errors.Wrap(err, "parse int"))
	}
	return v, nil
}

// PeekType returns the tag of frame without decoding its fields. Frames
// whose tag is missing, not a number, or not a known case yield TypeUnknown.
func PeekType(frame []byte) MessageType {
	tag, ok := parseTag(frame)
	if !ok || !MessageType(tag).known() {
		return TypeUnknown
	}
	return MessageType(tag)
}

// parseTag reads the leading tag of payload. ok is false when the tag is
// not a base-10 integer.
func parseTag(payload []byte) (tag int, ok bool) {
	end := bytes.IndexByte(payload, Separator)
	if end < 0 {
		end = len(payload)
	}
	v, err := strconv.Atoi(string(payload[:end]))
	if err != nil {
		return 0, false
	}
	return v, true
}
