package types

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Identities are stored as their bech32 string so documents stay readable in the shell.

func (id Identity) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(id.String())
}

func (id *Identity) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	s, ok := raw.StringValueOK()
	if !ok {
		return fmt.Errorf("cannot decode identity from bson type %s", t)
	}
	return id.UnmarshalText([]byte(s))
}
