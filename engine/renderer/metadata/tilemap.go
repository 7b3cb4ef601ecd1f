package metadata

/** @brief A single placed tile resolved from a map layer. */
type TileInstance struct {
	/** @brief Column and row in the layer grid. */
	Column, Row int
	/** @brief Image of the owning tileset, relative to the asset directory when the loader knows it. */
	TilesetImage string
	/** @brief Pixel rectangle of the tile inside the tileset image. */
	SourceX, SourceY, SourceWidth, SourceHeight int
	FlipX, FlipY bool
	/** @brief Index of the layer the tile came from; higher draws on top. */
	Layer int
}

type TileMapResourceData struct {
	Width, Height         int
	TileWidth, TileHeight int
	Tiles                 []TileInstance
	/** @brief Unique tileset image paths referenced by Tiles. */
	TilesetImages []string
}
