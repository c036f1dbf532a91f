package engine

import (
	"fmt"
	"strings"
)

// Tile glyphs used by Render.
const (
	GlyphAdventurer = 'A'
	GlyphHeliport   = 'H'
	GlyphArtifact   = '*'
	GlyphNormal     = '.'
	GlyphFlooded    = '~'
	GlyphSunk       = ' '
)

// Glyph returns the character Render uses for a tile. The adventurer wins
// over everything, then water, then the heliport and the artifact.
func Glyph(t TileView) rune {
	switch {
	case t.Occupied:
		return GlyphAdventurer
	case t.Sea || t.Level == Sunk:
		return GlyphSunk
	case t.Heliport:
		return GlyphHeliport
	case t.Artifact:
		return GlyphArtifact
	case t.Level == Flooded:
		return GlyphFlooded
	}
	return GlyphNormal
}

// Render draws the island as text, framed by the sea ring, followed by a
// status line.
func Render(state *GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", state.Width) + "+\n"

	b.WriteString("  ")
	for x := 1; x <= state.Width; x++ {
		b.WriteString(fmt.Sprintf("%d", x%10))
	}
	b.WriteString("\n ")
	b.WriteString(border)
	for y, row := range state.Tiles {
		b.WriteString(fmt.Sprintf("%d|", (y+1)%10))
		for _, t := range row {
			b.WriteRune(Glyph(t))
		}
		b.WriteString("|\n")
	}
	b.WriteString(" ")
	b.WriteString(border)

	adv := state.Adventurer
	b.WriteString(fmt.Sprintf("Turn %d | Position %v | Actions %d/%d | Artifact: %s\n",
		state.Turn, adv.Position, adv.ActionsRemaining, ActionsPerTurn, artifactLabel(state)))

	switch state.Status {
	case Won:
		b.WriteString("VICTORY\n")
	case Lost:
		b.WriteString(fmt.Sprintf("GAME OVER (%s)\n", state.LossReason))
	}
	if state.Message != "" {
		b.WriteString(state.Message)
		b.WriteString("\n")
	}
	return b.String()
}

// Legend explains the glyphs used by Render.
func Legend() string {
	return fmt.Sprintf("%c adventurer  %c heliport  %c artifact  %c land  %c flooded  '%c' sunk",
		GlyphAdventurer, GlyphHeliport, GlyphArtifact, GlyphNormal, GlyphFlooded, GlyphSunk)
}

func artifactLabel(state *GameState) string {
	if state.Adventurer.HasArtifact {
		return fmt.Sprintf("%s (held)", state.ArtifactKind)
	}
	return fmt.Sprintf("%s (on the island)", state.ArtifactKind)
}
