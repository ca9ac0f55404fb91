package sequencer

// ChainController walks a song chain bar by bar. It is not safe for
// concurrent use; the Store guards it.
type ChainController struct {
	items   []ChainItem
	index   int
	elapsed int // bars played of items[index]
	enabled bool
}

// Items returns a copy of the chain
func (c *ChainController) Items() []ChainItem {
	out := make([]ChainItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of chain items
func (c *ChainController) Len() int {
	return len(c.items)
}

// Enabled reports whether song mode is on
func (c *ChainController) Enabled() bool {
	return c.enabled
}

// Position returns the current index and the bars elapsed in it
func (c *ChainController) Position() (index, elapsed int) {
	return c.index, c.elapsed
}

// Current returns the item being played
func (c *ChainController) Current() (ChainItem, bool) {
	if len(c.items) == 0 {
		return ChainItem{}, false
	}
	return c.items[c.index], true
}

// SetEnabled toggles song mode. Turning it on rewinds to the first item.
func (c *ChainController) SetEnabled(on bool) {
	c.enabled = on
	if on {
		c.Rewind()
	}
}

// Rewind goes back to the first item without touching the chain
func (c *ChainController) Rewind() {
	c.index = 0
	c.elapsed = 0
}

// Append adds an item; bars below 1 become 1
func (c *ChainController) Append(item ChainItem) bool {
	if !item.PatternID.Valid() {
		return false
	}
	if item.Bars < 1 {
		item.Bars = 1
	}
	c.items = append(c.items, item)
	return true
}

// Remove deletes the item at i, keeping the cursor on a valid item
func (c *ChainController) Remove(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	switch {
	case len(c.items) == 0:
		c.Rewind()
	case i < c.index:
		c.index--
	case i == c.index:
		c.elapsed = 0
		if c.index >= len(c.items) {
			c.index = 0
		}
	}
}

// Clear empties the chain
func (c *ChainController) Clear() {
	c.items = nil
	c.Rewind()
}

// Load replaces the chain, dropping invalid items
func (c *ChainController) Load(items []ChainItem) {
	c.items = nil
	for _, it := range items {
		c.Append(it)
	}
	c.Rewind()
}

// Advance counts one finished bar. When the current item has played all
// its bars the chain moves on (wrapping) and the new pattern is returned
// with switched = true.
func (c *ChainController) Advance() (next PatternID, switched bool) {
	if !c.enabled || len(c.items) == 0 {
		return 0, false
	}
	c.elapsed++
	if c.elapsed < c.items[c.index].Bars {
		return 0, false
	}
	c.elapsed = 0
	c.index = (c.index + 1) % len(c.items)
	return c.items[c.index].PatternID, true
}
