// Package gpu implements the wgpu/hal rendering backend for uirect.
//
// Rectangles are rendered instanced: the host encodes each Rect into a
// fixed-size GPU record, the vertex stage expands every record into two
// triangles from the vertex index alone (no vertex or index buffers), and
// the fragment stage evaluates a rounded-rectangle SDF per pixel for
// anti-aliased coverage, paint resolution, and border compositing.
//
// The backend registers with the root package via uirect.RegisterBackend;
// users opt in with a blank import of github.com/gogpu/uirect/gpu.
package gpu
