package domain

// Settings is the process-wide configuration read by the scorer and ledger to
// gate behavior. Updates are whole-object replace-merge; there are no
// transactional semantics.
type Settings struct {
	RealTimeScanning     bool `json:"realTimeScanning"`
	NotificationsEnabled bool `json:"notificationsEnabled"`
	PrivacyMode          bool `json:"privacyMode"`
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	RealTimeScanning     *bool `json:"realTimeScanning,omitempty"`
	NotificationsEnabled *bool `json:"notificationsEnabled,omitempty"`
	PrivacyMode          *bool `json:"privacyMode,omitempty"`
}

// DefaultSettings returns the settings used when nothing is persisted yet or
// the persisted blob does not validate.
func DefaultSettings() Settings {
	return Settings{
		RealTimeScanning:     true,
		NotificationsEnabled: true,
		PrivacyMode:          false,
	}
}

// Apply merges a patch over s and returns the result.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.RealTimeScanning != nil {
		s.RealTimeScanning = *p.RealTimeScanning
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.PrivacyMode != nil {
		s.PrivacyMode = *p.PrivacyMode
	}
	return s
}
