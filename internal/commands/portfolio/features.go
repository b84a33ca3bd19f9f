package portfoliocmd

// FeatureGates exposes runtime toggles for portfolio command handlers.
// Callers supply closures reading from the command configuration.
type FeatureGates struct {
	CommandsEnabled func() bool
}

func (g FeatureGates) commandsEnabled() bool {
	if g.CommandsEnabled == nil {
		return true
	}
	return g.CommandsEnabled()
}
