package game

import (
	"image/color"

	"chosenoffset.com/rubble/internal/core/geom"
	"chosenoffset.com/rubble/internal/render"
	"chosenoffset.com/rubble/internal/terrain"
	"chosenoffset.com/rubble/internal/world"
)

// MeshCache keeps the latest mesh the terrain submitted for each body and turns it
// into renderer vertices on demand.
type MeshCache struct {
	meshes  map[world.BodyID]terrain.Mesh
	scratch []render.Vertex
}

// NewMeshCache creates an empty cache.
func NewMeshCache() *MeshCache {
	return &MeshCache{meshes: make(map[world.BodyID]terrain.Mesh)}
}

// SubmitMesh stores mesh as the current mesh of id.
func (c *MeshCache) SubmitMesh(id world.BodyID, mesh terrain.Mesh) {
	c.meshes[id] = mesh
}

// Mesh returns the current mesh of id.
func (c *MeshCache) Mesh(id world.BodyID) (terrain.Mesh, bool) {
	m, ok := c.meshes[id]
	return m, ok
}

// Silhouette returns the outline id should be stroked with.
func (c *MeshCache) Silhouette(id world.BodyID) (geom.Polygon, bool) {
	m, ok := c.meshes[id]
	if !ok || len(m.Silhouette) < 3 {
		return nil, false
	}
	return m.Silhouette, true
}

// Forget drops the mesh of a removed body.
func (c *MeshCache) Forget(id world.BodyID) {
	delete(c.meshes, id)
}

// Len returns the number of cached meshes.
func (c *MeshCache) Len() int {
	return len(c.meshes)
}

// Vertices returns screen vertices and indices for id. The vertex slice is reused by
// the next call.
func (c *MeshCache) Vertices(id world.BodyID, cam render.Camera, texWidth, texHeight int, tint color.Color) ([]render.Vertex, []uint16, bool) {
	m, ok := c.meshes[id]
	if !ok || len(m.Indices) == 0 {
		return nil, nil, false
	}
	c.scratch = render.TexturedVertices(c.scratch[:0], cam, m.Vertices, m.UVs, texWidth, texHeight, tint)
	return c.scratch, m.Indices, true
}
