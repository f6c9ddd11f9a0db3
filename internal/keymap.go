package lithotop

// Command is a user intent, independent of the key that produced it
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdUp
	CmdDown
	CmdActivate
	CmdRefresh
	CmdExport
	CmdFocusNext
	CmdSearch
	CmdToggleView
	CmdNextChart
	CmdPrevChart
	CmdZoomIn
	CmdZoomOut
	CmdZoomReset
	CmdPanLeft
	CmdPanRight
	CmdCursorLeft
	CmdCursorRight
	CmdDismiss
)

// KeyMap maps key names as reported by bubbletea to commands
type KeyMap map[string]Command

// DefaultKeyMap is the vim-flavoured binding set
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"q":      CmdQuit,
		"ctrl+c": CmdQuit,
		"k":      CmdUp,
		"up":     CmdUp,
		"j":      CmdDown,
		"down":   CmdDown,
		"enter":  CmdActivate,
		" ":      CmdActivate,
		"r":      CmdRefresh,
		"e":      CmdExport,
		"tab":    CmdFocusNext,
		"/":      CmdSearch,
		"v":      CmdToggleView,
		"]":      CmdNextChart,
		"[":      CmdPrevChart,
		"+":      CmdZoomIn,
		"=":      CmdZoomIn,
		"-":      CmdZoomOut,
		"0":      CmdZoomReset,
		"H":      CmdPanLeft,
		"L":      CmdPanRight,
		"h":      CmdCursorLeft,
		"left":   CmdCursorLeft,
		"l":      CmdCursorRight,
		"right":  CmdCursorRight,
		"esc":    CmdDismiss,
	}
}

// Lookup returns the command bound to key, or CmdNone
func (k KeyMap) Lookup(key string) Command {
	return k[key]
}
