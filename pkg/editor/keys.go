package editor

// Key is one decoded keyboard event from the editing surface. Name is
// the lowercase key name ("z", "y", "s"); Mod is the platform edit
// modifier (ctrl, or cmd on macOS).
type Key struct {
	Name  string
	Mod   bool
	Shift bool
}

// HandleKey routes the editor shortcuts: mod+z undoes, mod+shift+z and
// mod+y redo, mod+s saves name and graph. Returns true when the key was
// consumed.
//
// While a text input has focus every shortcut is ignored, so typing
// (and the input widget's own undo) never moves graph history.
func (s *Session) HandleKey(k Key) bool {
	if !k.Mod {
		return false
	}
	if s.opts.TextInputFocused != nil && s.opts.TextInputFocused() {
		return false
	}
	switch k.Name {
	case "z":
		if k.Shift {
			s.Redo()
		} else {
			s.Undo()
		}
		return true
	case "y":
		s.Redo()
		return true
	case "s":
		// Fire and forget: Save logs and reports failures itself.
		go func() { _ = s.Save(s.ctx, true) }()
		return true
	}
	return false
}
