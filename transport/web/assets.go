package web

import (
	"fmt"
	"path"
	"strings"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// DefaultImageBase is where the tile and reference images are served from.
const DefaultImageBase = "/static/images"

// TileAsset is one cell of a board with its image.
type TileAsset struct {
	Index int         `json:"index"`
	Tile  engine.Tile `json:"tile"`
	Label string      `json:"label"`
	URL   string      `json:"url,omitempty"`
	Blank bool        `json:"blank"`
}

// LevelAssets lists the canonical tiles of a level and its reference picture.
type LevelAssets struct {
	Level     int         `json:"level"`
	GridSize  int         `json:"grid_size"`
	Title     string      `json:"title"`
	Reference string      `json:"reference"`
	Tiles     []TileAsset `json:"tiles"`
}

// AssetResolver maps fragment ids and levels to image URLs.
type AssetResolver struct {
	base string
}

// NewAssetResolver returns a resolver rooted at base, DefaultImageBase when
// base is empty.
func NewAssetResolver(base string) *AssetResolver {
	if base == "" {
		base = DefaultImageBase
	}
	return &AssetResolver{base: strings.TrimSuffix(base, "/")}
}

// TileURL returns the image of a fragment; the blank has none.
func (a *AssetResolver) TileURL(t engine.Tile) string {
	if t == engine.Blank || t == "" {
		return ""
	}
	return path.Join(a.base, "split"+string(t)+".png")
}

// ReferenceURL returns the solved picture shown next to the board.
func (a *AssetResolver) ReferenceURL(level int) string {
	n := engine.ClampLevel(level)
	return path.Join(a.base, fmt.Sprintf("ref%dx%d.jpg", n, n))
}

// Board resolves every cell of an arrangement.
func (a *AssetResolver) Board(tiles []engine.Tile) []TileAsset {
	assets := make([]TileAsset, len(tiles))
	for i, t := range tiles {
		assets[i] = TileAsset{
			Index: i,
			Tile:  t,
			Label: tileLabel(t),
			URL:   a.TileURL(t),
			Blank: t == engine.Blank,
		}
	}
	return assets
}

// Level resolves the canonical arrangement of a level.
func (a *AssetResolver) Level(level int) LevelAssets {
	n := engine.ClampLevel(level)
	return LevelAssets{
		Level:     n,
		GridSize:  engine.GridSize(n),
		Title:     engine.LevelTitle(n),
		Reference: a.ReferenceURL(n),
		Tiles:     a.Board(engine.TilesForLevel(n)),
	}
}

// tileLabel is the fragment number, shown when the image is missing.
func tileLabel(t engine.Tile) string {
	if t == engine.Blank {
		return ""
	}
	s := string(t)
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		return s[i+1:]
	}
	return s
}
