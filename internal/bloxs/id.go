package bloxs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque identifier handed out by Bloxs. The service returns numbers for most
// entities and strings for some (bank accounts, uploaded files), so both are accepted.
// The zero value means "unresolved".
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether the ID was never resolved.
func (id ID) IsZero() bool { return id == "" }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("bloxs: invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}
