package systems

import (
	"sort"

	"github.com/spaghettifunk/anima2d/engine/math"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

const (
	// MaxSpritesPerBatch bounds the quads issued by a single draw call.
	MaxSpritesPerBatch = 2000
	// FloatsPerVertex is position xyz, colour rgba and uv.
	FloatsPerVertex   = 9
	VerticesPerSprite = 4
	IndicesPerSprite  = 6

	vertexStride = FloatsPerVertex * 4
)

// SpriteVertexLayout matches the attribute locations of the sprite shader.
var SpriteVertexLayout = []metadata.VertexAttribute{
	{Location: 0, Components: 3, Stride: vertexStride, Offset: 0},
	{Location: 1, Components: 4, Stride: vertexStride, Offset: 3 * 4},
	{Location: 2, Components: 2, Stride: vertexStride, Offset: 7 * 4},
}

// batchID addresses a batch in the arena. Ids stay valid for the lifetime
// of the renderer; sorting only reorders the order slice.
type batchID int

const noBatch batchID = -1

// SpriteBatch accumulates quads sharing one texture into a vertex and index
// buffer pair that is drawn with a single call.
type SpriteBatch struct {
	Texture     *metadata.Texture
	Vertices    []float32
	Indices     []uint16
	VBO         metadata.Handle
	IBO         metadata.Handle
	VAO         metadata.Handle
	SpriteCount int
}

func newSpriteBatch(texture *metadata.Texture) *SpriteBatch {
	return &SpriteBatch{
		Texture:  texture,
		Vertices: make([]float32, 0, MaxSpritesPerBatch*VerticesPerSprite*FloatsPerVertex),
		Indices:  make([]uint16, 0, MaxSpritesPerBatch*IndicesPerSprite),
	}
}

func (b *SpriteBatch) handle() metadata.Handle {
	if b.Texture == nil {
		return metadata.InvalidHandle
	}
	return b.Texture.Handle
}

func (b *SpriteBatch) IsFull() bool {
	return b.SpriteCount >= MaxSpritesPerBatch
}

func (b *SpriteBatch) IsEmpty() bool {
	return b.SpriteCount == 0
}

func (b *SpriteBatch) reset() {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
	b.SpriteCount = 0
}

// appendQuad adds corners in top-left, top-right, bottom-right, bottom-left
// order as two counter-clockwise triangles.
func (b *SpriteBatch) appendQuad(corners [4]math.Vec2, u0, v0, u1, v1 float32, colour math.Vec4) {
	base := uint16(b.SpriteCount * VerticesPerSprite)
	uvs := [4][2]float32{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}
	for i, c := range corners {
		b.Vertices = append(b.Vertices,
			c.X, c.Y, 0,
			colour.X, colour.Y, colour.Z, colour.W,
			uvs[i][0], uvs[i][1],
		)
	}
	b.Indices = append(b.Indices,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
	b.SpriteCount++
}

// batchStore owns every batch the renderer has created. The lookup map is
// cleared at the start of each frame; the batches and their GPU buffers
// are kept and reused.
type batchStore struct {
	arena   []*SpriteBatch
	order   []batchID
	lookup  map[metadata.Handle]batchID
	current batchID
}

func newBatchStore() *batchStore {
	return &batchStore{
		lookup:  make(map[metadata.Handle]batchID),
		current: noBatch,
	}
}

func (s *batchStore) get(id batchID) *SpriteBatch {
	if id < 0 || int(id) >= len(s.arena) {
		return nil
	}
	return s.arena[id]
}

func (s *batchStore) add(b *SpriteBatch) batchID {
	id := batchID(len(s.arena))
	s.arena = append(s.arena, b)
	s.order = append(s.order, id)
	return id
}

func (s *batchStore) beginFrame() {
	clear(s.lookup)
	s.current = noBatch
}

// find prefers the cached batch for the texture, then the open batch, then
// any existing batch for the texture with room. An empty batch left over
// from an earlier flush is retextured rather than allocating a new one.
func (s *batchStore) find(texture *metadata.Texture) batchID {
	h := texture.Handle
	if id, ok := s.lookup[h]; ok && !s.arena[id].IsFull() {
		return id
	}
	if cur := s.get(s.current); cur != nil && cur.handle() == h && !cur.IsFull() {
		return s.current
	}

	spare := noBatch
	for _, id := range s.order {
		b := s.arena[id]
		if b.handle() == h && !b.IsFull() {
			return id
		}
		if spare == noBatch && b.IsEmpty() {
			spare = id
		}
	}
	if spare != noBatch {
		s.retexture(spare, texture)
	}
	return spare
}

func (s *batchStore) retexture(id batchID, texture *metadata.Texture) {
	b := s.arena[id]
	if old := b.handle(); old != texture.Handle {
		if mapped, ok := s.lookup[old]; ok && mapped == id {
			delete(s.lookup, old)
		}
	}
	b.Texture = texture
}

// optimize sorts batches by texture with empty ones last and rebuilds the
// lookup map from the non-empty batches.
func (s *batchStore) optimize() {
	sort.SliceStable(s.order, func(i, j int) bool {
		a, b := s.arena[s.order[i]], s.arena[s.order[j]]
		if a.IsEmpty() != b.IsEmpty() {
			return !a.IsEmpty()
		}
		return a.handle() < b.handle()
	})

	clear(s.lookup)
	for _, id := range s.order {
		b := s.arena[id]
		if b.IsEmpty() {
			break
		}
		if _, ok := s.lookup[b.handle()]; !ok {
			s.lookup[b.handle()] = id
		}
	}
}
