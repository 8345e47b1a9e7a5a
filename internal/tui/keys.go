package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Edit      key.Binding
	Cycle     key.Binding
	Add       key.Binding
	Duplicate key.Binding
	Delete    key.Binding
	WhatIfUp  key.Binding
	WhatIfDn  key.Binding
	WhatIf    key.Binding
	Currency  key.Binding
	ExportJS  key.Binding
	ExportCSV key.Binding
	Import    key.Binding
	Reset     key.Binding
	Save      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "right")),
		Edit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Cycle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "next value")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Duplicate: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "duplicate")),
		Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		WhatIfUp:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "what-if ±5%")),
		WhatIfDn:  key.NewBinding(key.WithKeys("-")),
		WhatIf:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "what-if")),
		Currency:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "currency")),
		ExportJS:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export json")),
		ExportCSV: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "export csv")),
		Import:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Reset:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Edit, k.Cycle, k.Add, k.Duplicate, k.Delete, k.WhatIfUp, k.WhatIf,
		k.Currency, k.ExportJS, k.ExportCSV, k.Import, k.Reset, k.Save, k.Quit,
	}
}

type inputKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

func newInputKeyMap() inputKeyMap {
	return inputKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}
