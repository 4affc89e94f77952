package engine

import "github.com/gofrs/uuid"

// EngineID is an opaque capability token minted once per LayeredEngine and
// carried by every Loader it hands out. A resolver swap on a Loader
// authenticates by pointer identity against this value — the Go analogue
// of a private constructor argument only the owning engine can produce;
// the embedded UUID exists only so a EngineID prints as something
// recognizable in log lines, never as part of the capability check itself.
type EngineID struct {
	value uuid.UUID
}

func newEngineID() *EngineID {
	return &EngineID{value: uuid.Must(uuid.NewV4())}
}

func (id *EngineID) String() string {
	if id == nil {
		return "EngineID(nil)"
	}
	return id.value.String()
}
