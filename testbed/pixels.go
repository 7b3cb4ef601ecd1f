package testbed

// Procedural art so the testbed runs without any asset on disk.

func fill(pixels []uint8, stride, x0, y0, w, h int, r, g, b, a uint8) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			i := (y*stride + x) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = r, g, b, a
		}
	}
}

// tileAtlasPixels is two tiles side by side: grass, then stone.
func tileAtlasPixels() []uint8 {
	stride := tileSize * 2
	pixels := make([]uint8, stride*tileSize*4)
	fill(pixels, stride, 0, 0, tileSize, tileSize, 0x4c, 0x9a, 0x3c, 0xff)
	for i := 0; i < 6; i++ {
		fill(pixels, stride, (i*5)%tileSize, (i*11)%tileSize, 1, 2, 0x3a, 0x7d, 0x2e, 0xff)
	}
	fill(pixels, stride, tileSize, 0, tileSize, tileSize, 0x80, 0x80, 0x88, 0xff)
	fill(pixels, stride, tileSize, tileSize/2, tileSize, 1, 0x5a, 0x5a, 0x62, 0xff)
	fill(pixels, stride, tileSize+tileSize/2, 0, 1, tileSize/2, 0x5a, 0x5a, 0x62, 0xff)
	return pixels
}

// heroPixels is a small figure on a transparent background.
func heroPixels() []uint8 {
	pixels := make([]uint8, tileSize*tileSize*4)
	fill(pixels, tileSize, 5, 1, 6, 5, 0xf1, 0xc2, 0x7d, 0xff)
	fill(pixels, tileSize, 8, 3, 2, 1, 0x20, 0x20, 0x20, 0xff)
	fill(pixels, tileSize, 4, 6, 8, 6, 0x2d, 0x5d, 0xc8, 0xff)
	fill(pixels, tileSize, 5, 12, 2, 3, 0x50, 0x34, 0x1c, 0xff)
	fill(pixels, tileSize, 9, 12, 2, 3, 0x50, 0x34, 0x1c, 0xff)
	return pixels
}
