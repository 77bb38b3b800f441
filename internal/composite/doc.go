// Package composite implements VisionFlow's layered image model.
//
// An Image owns a base picture, a stack of Layers seeded with a "Background"
// copy of the base, metadata computed once from the base, and an append-only
// history of the mutations applied to it (add_layer, remove_layer, save,
// apply_pipeline).
//
// # Flattening
//
// Flatten walks the stack bottom to top. The first visible layer is the
// starting point; each later visible layer is blended on with its opacity:
//
//	normal:   out = acc*(1-opacity) + layer*opacity
//	multiply: out = (acc*layer/255)*opacity + acc*(1-opacity)
//
// Unknown blend modes behave like normal. Results are clamped and truncated to
// 8 bits after every layer.
package composite
