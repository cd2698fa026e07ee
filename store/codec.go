package store

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

// value kinds of the wire format
const (
	kindString uint8 = iota
	kindInt
	kindFloat
	kindPoint
	kindBinary
)

// wireTag is the CBOR form of one tag. The kind keeps the Go value type,
// CBOR alone can not tell an int 1 from a float 1.0.
type wireTag struct {
	Code   int       `cbor:"1,keyasint"`
	Kind   uint8     `cbor:"2,keyasint"`
	String string    `cbor:"3,keyasint,omitempty"`
	Int    int64     `cbor:"4,keyasint,omitempty"`
	Float  float64   `cbor:"5,keyasint,omitempty"`
	Coords []float64 `cbor:"6,keyasint,omitempty"`
	Bytes  []byte    `cbor:"7,keyasint,omitempty"`
}

// codec encodes tag streams as CBOR arrays of wireTag
type codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCodec() (*codec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, errors.Wrap(err, "cbor encoder")
	}
	dec, err := cbor.DecOptions{MaxArrayElements: 1 << 20}.DecMode()
	if err != nil {
		return nil, errors.Wrap(err, "cbor decoder")
	}
	return &codec{enc: enc, dec: dec}, nil
}

func toWire(t tag.Tag) (wireTag, error) {
	w := wireTag{Code: t.Code}
	switch v := t.Value.(type) {
	case string:
		w.Kind, w.String = kindString, v
	case int:
		w.Kind, w.Int = kindInt, int64(v)
	case int64:
		w.Kind, w.Int = kindInt, v
	case float64:
		w.Kind, w.Float = kindFloat, v
	case tag.Point:
		w.Kind, w.Coords = kindPoint, v.Coords()
	case []byte:
		w.Kind, w.Bytes = kindBinary, v
	default:
		return w, errors.Wrapf(errors.ErrInvalidValue, "code %d: unsupported value type %T", t.Code, t.Value)
	}
	return w, nil
}

func fromWire(w wireTag) (tag.Tag, error) {
	switch w.Kind {
	case kindString:
		return tag.New(w.Code, w.String), nil
	case kindInt:
		return tag.New(w.Code, int(w.Int)), nil
	case kindFloat:
		return tag.New(w.Code, w.Float), nil
	case kindPoint:
		switch len(w.Coords) {
		case 2:
			return tag.New(w.Code, tag.Vec2(w.Coords[0], w.Coords[1])), nil
		case 3:
			return tag.New(w.Code, tag.Vec3(w.Coords[0], w.Coords[1], w.Coords[2])), nil
		}
		return tag.Tag{}, errors.Wrapf(errors.ErrInvalidValue, "code %d: point with %d coordinates", w.Code, len(w.Coords))
	case kindBinary:
		return tag.New(w.Code, w.Bytes), nil
	}
	return tag.Tag{}, errors.Wrapf(errors.ErrInvalidValue, "code %d: unknown value kind %d", w.Code, w.Kind)
}

func (c *codec) encode(tags tag.Tags) ([]byte, error) {
	wire := make([]wireTag, 0, len(tags))
	for _, t := range tags {
		w, err := toWire(t)
		if err != nil {
			return nil, err
		}
		wire = append(wire, w)
	}
	data, err := c.enc.Marshal(wire)
	if err != nil {
		return nil, errors.Wrap(err, "encode tags")
	}
	return data, nil
}

func (c *codec) decode(data []byte) (tag.Tags, error) {
	var wire []wireTag
	if err := c.dec.Unmarshal(data, &wire); err != nil {
		return nil, errors.Wrap(err, "decode tags")
	}
	tags := make(tag.Tags, 0, len(wire))
	for _, w := range wire {
		t, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
