package user

// Capability is an opaque permission granted by the identity service.
type Capability string

const (
	CapabilityModerate    Capability = "match.moderate"
	CapabilityManageMatch Capability = "match.manage"
)

// Principal is the resolved caller of a command.
type Principal struct {
	UserID       string
	DisplayName  string
	Email        string
	Capabilities map[Capability]struct{}
}

func NewPrincipal(userID, displayName string, capabilities ...Capability) Principal {
	p := Principal{
		UserID:       userID,
		DisplayName:  displayName,
		Capabilities: make(map[Capability]struct{}, len(capabilities)),
	}
	for _, c := range capabilities {
		p.Capabilities[c] = struct{}{}
	}
	return p
}

func (p Principal) Has(c Capability) bool {
	_, ok := p.Capabilities[c]
	return ok
}

func (p Principal) CanModerate() bool {
	return p.Has(CapabilityModerate)
}

func (p Principal) CanManageMatch() bool {
	return p.Has(CapabilityManageMatch)
}
