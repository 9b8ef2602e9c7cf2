package model

import (
	"encoding/json"
	"fmt"
)

// recordID decodes a stored id written either as a JSON string (xid, what
// this module writes) or as a JSON number (a millisecond timestamp, what the
// browser dashboard wrote). Numbers keep their literal digits, so
// 1718000000000 becomes "1718000000000". Ids are always written back as
// strings.
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("model: id must be a string or a number: %w", err)
	}
	*id = recordID(n.String())
	return nil
}

// DECODING WITH A LOOSE ID:
// Each UnmarshalJSON below decodes into a local copy of the type (which has
// no UnmarshalJSON of its own, so there is no recursion) and shadows its id
// field with a recordID. encoding/json prefers the shallower field.

func (t *Todo) UnmarshalJSON(b []byte) error {
	type todo Todo
	aux := struct {
		*todo
		ID recordID `json:"id"`
	}{todo: (*todo)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.ID = string(aux.ID)
	return nil
}

func (e *Event) UnmarshalJSON(b []byte) error {
	type event Event
	aux := struct {
		*event
		ID recordID `json:"id"`
	}{event: (*event)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.ID = string(aux.ID)
	return nil
}

func (n *Note) UnmarshalJSON(b []byte) error {
	type note Note
	aux := struct {
		*note
		ID recordID `json:"id"`
	}{note: (*note)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	n.ID = string(aux.ID)
	return nil
}

func (s *Session) UnmarshalJSON(b []byte) error {
	type session Session
	aux := struct {
		*session
		ID recordID `json:"id"`
	}{session: (*session)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.ID = string(aux.ID)
	return nil
}

func (a *Account) UnmarshalJSON(b []byte) error {
	type account Account
	aux := struct {
		*account
		ID recordID `json:"id"`
	}{account: (*account)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.ID = string(aux.ID)
	return nil
}
