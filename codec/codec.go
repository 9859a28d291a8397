package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	out := new(T)
	err := json.Unmarshal(bz, out)
	if err != nil {
		return *out, eris.Wrap(err, "")
	}
	return *out, nil
}

func Encode(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}
