package engine

import (
	"strings"
	"testing"
)

func TestGlyph(t *testing.T) {
	tests := []struct {
		name string
		tile TileView
		want rune
	}{
		{"normal", TileView{Level: Normal}, GlyphNormal},
		{"flooded", TileView{Level: Flooded}, GlyphFlooded},
		{"sunk", TileView{Level: Sunk}, GlyphSunk},
		{"sea", TileView{Level: Sunk, Sea: true}, GlyphSunk},
		{"heliport over flood", TileView{Level: Flooded, Heliport: true}, GlyphHeliport},
		{"artifact", TileView{Level: Normal, Artifact: true}, GlyphArtifact},
		{"adventurer over all", TileView{Level: Flooded, Heliport: true, Occupied: true}, GlyphAdventurer},
		{"sunk heliport", TileView{Level: Sunk, Heliport: true}, GlyphSunk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Glyph(tt.tile); got != tt.want {
				t.Errorf("Glyph() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	if got := Render(nil); got != "No game state available" {
		t.Errorf("Render(nil) = %q", got)
	}

	e := newTestEngine()
	out := Render(e.State())

	for _, want := range []string{
		"1|H*....|",
		"3|~.A...|",
		"6|~.....|",
		"Turn 1 | Position (3,3) | Actions 3/3 | Artifact: earth (on the island)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render output missing %q:\n%s", want, out)
		}
	}

	e.EndTurn()
	if out := Render(e.State()); !strings.Contains(out, "GAME OVER (heliport_sunk)") {
		t.Errorf("Expected game over banner:\n%s", out)
	}
}

func TestLegend(t *testing.T) {
	legend := Legend()
	for _, want := range []string{"A adventurer", "H heliport", "~ flooded"} {
		if !strings.Contains(legend, want) {
			t.Errorf("Legend missing %q: %s", want, legend)
		}
	}
}
