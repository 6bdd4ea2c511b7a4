package codec

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/custody/errors"
)

// Wire types used by custody messages.
const (
	WireVarint = 0
	WireBytes  = 2
)

// Marshaler is implemented by every encoded message.
type Marshaler interface {
	Marshal() ([]byte, error)
}

// Unmarshaler is implemented by every decoded message.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Writer appends protobuf fields. Zero scalars and empty bytes are
// omitted, as proto3 does. The zero value is ready to use.
type Writer struct {
	buf proto.Buffer
	err error
}

func (w *Writer) key(field, wire int) {
	w.buf.EncodeVarint(uint64(field)<<3 | uint64(wire))
}

// Bytes writes a length delimited field.
func (w *Writer) Bytes(field int, v []byte) {
	if len(v) == 0 {
		return
	}
	w.key(field, WireBytes)
	w.buf.EncodeRawBytes(v)
}

// Uint64 writes a varint field.
func (w *Writer) Uint64(field int, v uint64) {
	if v == 0 {
		return
	}
	w.key(field, WireVarint)
	w.buf.EncodeVarint(v)
}

// Int64 writes a varint field, negative values use ten bytes.
func (w *Writer) Int64(field int, v int64) {
	w.Uint64(field, uint64(v))
}

// Message writes m as an embedded message. Nil messages are omitted,
// empty ones are kept so repeated fields preserve their length.
func (w *Writer) Message(field int, m Marshaler) {
	if w.err != nil || m == nil {
		return
	}
	raw, err := m.Marshal()
	if err != nil {
		w.err = err
		return
	}
	w.key(field, WireBytes)
	w.buf.EncodeRawBytes(raw)
}

// Result returns the encoded bytes or the first error met.
func (w *Writer) Result() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Field is one decoded field. Bytes is only set for WireBytes and
// Varint only for WireVarint.
type Field struct {
	Number int
	Wire   int
	Varint uint64
	Bytes  []byte
}

// Target receives the value of one field.
type Target func(Field) error

// Fields maps field numbers to their targets.
type Fields map[int]Target

// Unmarshal decodes raw and hands every field to its target. Unknown
// fields are skipped.
func Unmarshal(raw []byte, fields Fields) error {
	for len(raw) > 0 {
		key, n := proto.DecodeVarint(raw)
		if n == 0 {
			return errors.Wrap(errors.ErrInput, "truncated field key")
		}
		raw = raw[n:]
		f := Field{Number: int(key >> 3), Wire: int(key & 7)}
		if f.Number <= 0 {
			return errors.Wrapf(errors.ErrInput, "invalid field number %d", f.Number)
		}

		switch f.Wire {
		case WireVarint:
			v, n := proto.DecodeVarint(raw)
			if n == 0 {
				return errors.Wrapf(errors.ErrInput, "field %d: truncated varint", f.Number)
			}
			f.Varint = v
			raw = raw[n:]
		case WireBytes:
			size, n := proto.DecodeVarint(raw)
			if n == 0 || size > uint64(len(raw)-n) {
				return errors.Wrapf(errors.ErrInput, "field %d: truncated bytes", f.Number)
			}
			end := n + int(size)
			f.Bytes = append([]byte(nil), raw[n:end]...)
			raw = raw[end:]
		default:
			return errors.Wrapf(errors.ErrInput, "field %d: unsupported wire type %d", f.Number, f.Wire)
		}

		if target, ok := fields[f.Number]; ok {
			if err := target(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func expect(f Field, wire int) error {
	if f.Wire != wire {
		return errors.Wrapf(errors.ErrInput, "field %d: wire type %d, want %d", f.Number, f.Wire, wire)
	}
	return nil
}

// BytesTo stores a length delimited field in dst. Named byte slices
// are passed converted, eg. (*[]byte)(&msg.Maker).
func BytesTo(dst *[]byte) Target {
	return func(f Field) error {
		if err := expect(f, WireBytes); err != nil {
			return err
		}
		*dst = f.Bytes
		return nil
	}
}

// Uint64To stores a varint field in dst.
func Uint64To(dst *uint64) Target {
	return func(f Field) error {
		if err := expect(f, WireVarint); err != nil {
			return err
		}
		*dst = f.Varint
		return nil
	}
}

// Int64To stores a varint field in dst.
func Int64To(dst *int64) Target {
	return func(f Field) error {
		if err := expect(f, WireVarint); err != nil {
			return err
		}
		*dst = int64(f.Varint)
		return nil
	}
}

// Uint8To stores a varint field in dst, rejecting values above 255.
func Uint8To(dst *uint8) Target {
	return func(f Field) error {
		if err := expect(f, WireVarint); err != nil {
			return err
		}
		if f.Varint > math.MaxUint8 {
			return errors.Wrapf(errors.ErrOverflow, "field %d: %d does not fit in a byte", f.Number, f.Varint)
		}
		*dst = uint8(f.Varint)
		return nil
	}
}

// MessageTo decodes an embedded message with the message created by
// fn. fn is called once per occurrence, which lets repeated fields
// append.
func MessageTo(fn func() Unmarshaler) Target {
	return func(f Field) error {
		if err := expect(f, WireBytes); err != nil {
			return err
		}
		return fn().Unmarshal(f.Bytes)
	}
}
