package cache

import (
	"github.com/jmgilman/go/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes values into the byte form stored by a CacheService.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

type msgpackCodec struct{}

// NewMsgpackCodec returns the default codec. Msgpack keeps entries compact in
// the shared backend and round-trips time.Time values without the precision
// loss JSON introduces.
func NewMsgpackCodec() Codec {
	return msgpackCodec{}
}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "cache value encoding failed")
	}
	return data, nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "cache value decoding failed")
	}
	return nil
}

func (msgpackCodec) Name() string { return "msgpack" }
