package backend

import (
	"github.com/hengadev/serdex/internal/serdeerr"
)

// KeyFunc rewrites object keys while transcoding.
type KeyFunc func(key string) string

// Transcode copies the value at d into s without an intermediate tree.
func Transcode(d Deserializer, s Serializer) error {
	return TranscodeKeys(d, s, nil)
}

// TranscodeKeys is Transcode with every object key passed through rename.
func TranscodeKeys(d Deserializer, s Serializer, rename KeyFunc) error {
	kind, err := d.PeekKind()
	if err != nil {
		return err
	}

	switch kind {
	case KindNull:
		if _, err := d.DeserializeNone(); err != nil {
			return err
		}
		return s.SerializeNone()
	case KindBool:
		b, err := d.DeserializeBool()
		if err != nil {
			return err
		}
		return s.SerializeBool(b)
	case KindNumber:
		n, err := d.DeserializeNumber()
		if err != nil {
			return err
		}
		return transcodeNumber(n, s)
	case KindString:
		str, err := d.DeserializeStr()
		if err != nil {
			return err
		}
		return s.SerializeStr(str)
	case KindBytes:
		b, err := d.DeserializeBytes()
		if err != nil {
			return err
		}
		return s.SerializeBytes(b)
	case KindArray:
		return transcodeArray(d, s, rename)
	case KindObject:
		return transcodeObject(d, s, rename)
	default:
		return serdeerr.NewUnexpectedKindError("a value", kind)
	}
}

func transcodeNumber(n Number, s Serializer) error {
	if n.IsInteger() {
		if n.IsNegative() {
			if i, err := n.Int64(); err == nil {
				return s.SerializeInt(i)
			}
		} else if u, err := n.Uint64(); err == nil {
			return s.SerializeUint(u)
		}
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	return s.SerializeFloat(f)
}

func transcodeArray(d Deserializer, s Serializer, rename KeyFunc) error {
	r, err := d.DeserializeSeq()
	if err != nil {
		return err
	}
	w, err := s.SerializeSeq(-1)
	if err != nil {
		return err
	}
	for {
		more, err := r.HasNext()
		if err != nil {
			return err
		}
		if !more {
			break
		}
		es, err := w.Element()
		if err != nil {
			return err
		}
		if err := TranscodeKeys(r.Element(), es, rename); err != nil {
			return err
		}
	}
	if err := r.Finish(); err != nil {
		return err
	}
	return w.Finish()
}

func transcodeObject(d Deserializer, s Serializer, rename KeyFunc) error {
	r, err := d.DeserializeMap()
	if err != nil {
		return err
	}
	w, err := s.SerializeMap(-1)
	if err != nil {
		return err
	}
	for {
		key, ok, err := r.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if rename != nil {
			key = rename(key)
		}
		es, err := w.Entry(key)
		if err != nil {
			return err
		}
		if err := TranscodeKeys(r.Value(), es, rename); err != nil {
			return err
		}
	}
	if err := r.Finish(); err != nil {
		return err
	}
	return w.Finish()
}
