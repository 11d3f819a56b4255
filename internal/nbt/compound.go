// Package nbt is the key-value container phases and player data persist
// themselves into. Encoded with msgpack for storage and transfer.
package nbt

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

var ErrNotCompound = errors.New("nbt: value is not a compound")

// Compound is a string-keyed bag of typed tags. Getters return the zero
// value for missing or mistyped keys, the way the host container does.
type Compound struct {
	tags map[string]any
}

func NewCompound() *Compound {
	return &Compound{tags: make(map[string]any)}
}

func (c *Compound) SetInt(key string, v int)            { c.tags[key] = int64(v) }
func (c *Compound) SetFloat(key string, v float64)      { c.tags[key] = v }
func (c *Compound) SetBool(key string, v bool)          { c.tags[key] = v }
func (c *Compound) SetString(key string, v string)      { c.tags[key] = v }
func (c *Compound) SetBytes(key string, v []byte)       { c.tags[key] = v }
func (c *Compound) SetCompound(key string, v *Compound) { c.tags[key] = v }

func (c *Compound) SetList(key string, v []*Compound) {
	list := make([]*Compound, len(v))
	copy(list, v)
	c.tags[key] = list
}

func (c *Compound) Has(key string) bool {
	_, ok := c.tags[key]
	return ok
}

func (c *Compound) Remove(key string) {
	delete(c.tags, key)
}

func (c *Compound) Len() int {
	return len(c.tags)
}

// Keys returns the tag names in sorted order.
func (c *Compound) Keys() []string {
	keys := make([]string, 0, len(c.tags))
	for k := range c.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Compound) Int(key string) int {
	v, _ := c.tags[key].(int64)
	return int(v)
}

func (c *Compound) Float(key string) float64 {
	switch v := c.tags[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func (c *Compound) Bool(key string) bool {
	v, _ := c.tags[key].(bool)
	return v
}

func (c *Compound) String(key string) string {
	v, _ := c.tags[key].(string)
	return v
}

func (c *Compound) Bytes(key string) []byte {
	v, _ := c.tags[key].([]byte)
	return v
}

// Compound returns the nested compound, or an empty one.
func (c *Compound) Compound(key string) *Compound {
	if v, ok := c.tags[key].(*Compound); ok {
		return v
	}
	return NewCompound()
}

// List returns a copy of the compound list stored under key.
func (c *Compound) List(key string) []*Compound {
	v, _ := c.tags[key].([]*Compound)
	out := make([]*Compound, len(v))
	copy(out, v)
	return out
}

// Encode serializes c with msgpack.
func (c *Compound) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(c.plain())
	if err != nil {
		return nil, fmt.Errorf("nbt encode: %w", err)
	}
	return b, nil
}

// Decode parses msgpack produced by Encode.
func Decode(b []byte) (*Compound, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("nbt decode: %w", err)
	}
	return fromPlain(m)
}

func (c *Compound) plain() map[string]any {
	m := make(map[string]any, len(c.tags))
	for k, v := range c.tags {
		switch t := v.(type) {
		case *Compound:
			m[k] = t.plain()
		case []*Compound:
			list := make([]any, len(t))
			for i, e := range t {
				list[i] = e.plain()
			}
			m[k] = list
		default:
			m[k] = v
		}
	}
	return m
}

func fromPlain(m map[string]any) (*Compound, error) {
	c := NewCompound()
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			nested, err := fromPlain(t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			c.tags[k] = nested
		case []any:
			list := make([]*Compound, 0, len(t))
			for i, e := range t {
				em, ok := e.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%s[%d]: %w", k, i, ErrNotCompound)
				}
				nested, err := fromPlain(em)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", k, i, err)
				}
				list = append(list, nested)
			}
			c.tags[k] = list
		case int8:
			c.tags[k] = int64(t)
		case int16:
			c.tags[k] = int64(t)
		case int32:
			c.tags[k] = int64(t)
		case int64:
			c.tags[k] = t
		case uint8:
			c.tags[k] = int64(t)
		case uint16:
			c.tags[k] = int64(t)
		case uint32:
			c.tags[k] = int64(t)
		case uint64:
			c.tags[k] = int64(t)
		case float32:
			c.tags[k] = float64(t)
		case nil:
		default:
			c.tags[k] = v
		}
	}
	return c, nil
}
