package canvas

// CharacterMerger decides what a cell shows when two drawing primitives
// write to it.
type CharacterMerger struct {
	mergeMap map[mergePair]rune
}

type mergePair struct {
	existing rune
	new      rune
}

// NewCharacterMerger creates a merger with standard box-drawing merge rules
func NewCharacterMerger() *CharacterMerger {
	m := &CharacterMerger{
		mergeMap: make(map[mergePair]rune),
	}
	m.initializeMergeRules()
	return m
}

// Merge combines two characters. Unknown pairs keep the new character so
// later primitives (text, anchors) win over earlier lines.
func (m *CharacterMerger) Merge(existing, new rune) rune {
	if existing == ' ' || existing == 0 || existing == new {
		return new
	}
	if isAnchor(existing) {
		return existing
	}
	if merged, ok := m.mergeMap[mergePair{existing, new}]; ok {
		return merged
	}
	if merged, ok := m.mergeMap[mergePair{new, existing}]; ok {
		return merged
	}
	return new
}

func isAnchor(r rune) bool {
	return r == '●' || r == '▶'
}

func (m *CharacterMerger) initializeMergeRules() {
	m.mergeMap[mergePair{'─', '│'}] = '┼'

	// A line running into a rounded corner becomes a T.
	m.mergeMap[mergePair{'╭', '─'}] = '┬'
	m.mergeMap[mergePair{'╮', '─'}] = '┬'
	m.mergeMap[mergePair{'╰', '─'}] = '┴'
	m.mergeMap[mergePair{'╯', '─'}] = '┴'
	m.mergeMap[mergePair{'╭', '│'}] = '├'
	m.mergeMap[mergePair{'╰', '│'}] = '├'
	m.mergeMap[mergePair{'╮', '│'}] = '┤'
	m.mergeMap[mergePair{'╯', '│'}] = '┤'

	m.mergeMap[mergePair{'┬', '│'}] = '┼'
	m.mergeMap[mergePair{'┴', '│'}] = '┼'
	m.mergeMap[mergePair{'├', '─'}] = '┼'
	m.mergeMap[mergePair{'┤', '─'}] = '┼'

	m.mergeMap[mergePair{'-', '|'}] = '+'
	m.mergeMap[mergePair{'+', '-'}] = '+'
	m.mergeMap[mergePair{'+', '|'}] = '+'
}
