package pagichat

// Store keys for the persisted identity pair.
const (
	storeKeyName    = "name"
	storeKeySession = "session_id"
)

// Identity is the pair the client presents when dialing: the display name and,
// once the server has issued one, the opaque session id used for resumption.
type Identity struct {
	Name      string
	SessionID string
}

// LoadIdentity reads the persisted identity. Absent keys leave zero fields.
func LoadIdentity(s Store) (Identity, error) {
	if s == nil {
		return Identity{}, nil
	}
	name, err := s.Get(storeKeyName)
	if err != nil {
		return Identity{}, err
	}
	session, err := s.Get(storeKeySession)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, SessionID: session}, nil
}

// SaveIdentity writes both identity keys.
func SaveIdentity(s Store, id Identity) error {
	if s == nil {
		return nil
	}
	if err := s.Set(storeKeyName, id.Name); err != nil {
		return err
	}
	return s.Set(storeKeySession, id.SessionID)
}
