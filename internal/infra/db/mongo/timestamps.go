package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Timestamp normalizes the mixed encodings found in documents written by
// earlier clients: BSON datetime, unix milliseconds, an RFC 3339 string, or
// a {seconds, nanos} sub-document. Whatever arrives, the domain only ever
// sees a UTC time.Time. New writes always use BSON datetime.
type Timestamp time.Time

func (t Timestamp) Time() time.Time { return time.Time(t).UTC() }

func NewTimestamp(v time.Time) Timestamp { return Timestamp(v.UTC()) }

func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(time.Time(t).UTC())
}

func (t *Timestamp) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: bt, Value: data}
	parsed, err := decodeTimestamp(raw)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func decodeTimestamp(raw bson.RawValue) (time.Time, error) {
	switch raw.Type {
	case bson.TypeDateTime:
		return raw.Time().UTC(), nil
	case bson.TypeInt64:
		return time.UnixMilli(raw.Int64()).UTC(), nil
	case bson.TypeInt32:
		return time.Unix(int64(raw.Int32()), 0).UTC(), nil
	case bson.TypeString:
		parsed, err := time.Parse(time.RFC3339, raw.StringValue())
		if err != nil {
			return time.Time{}, fmt.Errorf("mongo: malformed timestamp string: %w", err)
		}
		return parsed.UTC(), nil
	case bson.TypeEmbeddedDocument:
		var doc struct {
			Seconds int64 `bson:"seconds"`
			Nanos   int64 `bson:"nanoseconds"`
		}
		if err := raw.Unmarshal(&doc); err != nil {
			return time.Time{}, fmt.Errorf("mongo: malformed timestamp document: %w", err)
		}
		return time.Unix(doc.Seconds, doc.Nanos).UTC(), nil
	case bson.TypeNull:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("mongo: unsupported timestamp encoding %s", raw.Type)
	}
}
