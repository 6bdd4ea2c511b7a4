package codec

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
)

type pair struct {
	Name  []byte
	Count uint64
}

func (p *pair) Marshal() ([]byte, error) {
	var w Writer
	w.Bytes(1, p.Name)
	w.Uint64(3, p.Count)
	return w.Result()
}

func (p *pair) Unmarshal(raw []byte) error {
	*p = pair{}
	return Unmarshal(raw, Fields{
		1: BytesTo(&p.Name),
		3: Uint64To(&p.Count),
	})
}

func TestWireFormat(t *testing.T) {
	raw, err := (&pair{Name: []byte("ab"), Count: 150}).Marshal()
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x0a, 0x02, 'a', 'b', 0x18, 0x96, 0x01}, raw)

	var back pair
	assert.Nil(t, back.Unmarshal(raw))
	assert.Equal(t, pair{Name: []byte("ab"), Count: 150}, back)

	empty, err := (&pair{}).Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 0, len(empty))
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	var w Writer
	w.Bytes(1, []byte("ab"))
	w.Uint64(7, 9)
	w.Bytes(8, []byte("later version"))
	w.Uint64(3, 2)
	raw, err := w.Result()
	assert.Nil(t, err)

	var back pair
	assert.Nil(t, back.Unmarshal(raw))
	assert.Equal(t, pair{Name: []byte("ab"), Count: 2}, back)
}

func TestRepeatedMessages(t *testing.T) {
	var w Writer
	w.Message(2, &pair{Name: []byte("x")})
	w.Message(2, &pair{})
	w.Message(2, &pair{Count: 3})
	raw, err := w.Result()
	assert.Nil(t, err)

	var got []*pair
	err = Unmarshal(raw, Fields{
		2: MessageTo(func() Unmarshaler {
			p := &pair{}
			got = append(got, p)
			return p
		}),
	})
	assert.Nil(t, err)
	assert.Equal(t, []*pair{{Name: []byte("x")}, {}, {Count: 3}}, got)
}

func TestMalformedInput(t *testing.T) {
	var dec uint8
	cases := map[string]struct {
		raw     []byte
		fields  Fields
		wantErr *errors.Error
	}{
		"truncated bytes": {
			raw:     []byte{0x0a, 0x05, 'a'},
			wantErr: errors.ErrInput,
		},
		"truncated varint": {
			raw:     []byte{0x18, 0x96},
			wantErr: errors.ErrInput,
		},
		"fixed64 wire type": {
			raw:     []byte{0x09, 1, 2, 3, 4, 5, 6, 7, 8},
			wantErr: errors.ErrInput,
		},
		"field zero": {
			raw:     []byte{0x00, 0x01},
			wantErr: errors.ErrInput,
		},
		"wrong wire type for target": {
			raw:     []byte{0x18, 0x01},
			fields:  Fields{3: BytesTo(new([]byte))},
			wantErr: errors.ErrInput,
		},
		"byte overflow": {
			raw:     []byte{0x28, 0x80, 0x02},
			fields:  Fields{5: Uint8To(&dec)},
			wantErr: errors.ErrOverflow,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, Unmarshal(tc.raw, tc.fields))
		})
	}
}
