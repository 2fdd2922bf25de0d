package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	toggleExpand  key.Binding
	toggleMine    key.Binding
	menu          key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	moveCardLeft  key.Binding
	moveCardRight key.Binding
	cardInfo      key.Binding
	openCard      key.Binding
	copyURL       key.Binding
	dismiss       key.Binding
	back          key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		toggleExpand:  key.NewBinding(key.WithKeys("e", "space"), key.WithHelp("e", "expand/minimize")),
		toggleMine:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "only my items")),
		menu:          key.NewBinding(key.WithKeys("m"), key.WithHelp("m/right-click", "menu")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "card up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "card down")),
		moveCardLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move card left")),
		moveCardRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move card right")),
		cardInfo:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "card info")),
		openCard:      key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o/enter", "open card")),
		copyURL:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
		dismiss:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss banner")),
		back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggleExpand, k.menu, k.cardInfo, k.reload, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggleExpand, k.toggleMine, k.menu, k.reload, k.dismiss, k.toggleHelp, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.moveCardLeft, k.moveCardRight},
		{k.cardInfo, k.openCard, k.copyURL, k.back},
	}
}
