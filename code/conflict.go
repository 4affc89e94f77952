package code

import "github.com/colterrand/layercache/errs"

// SameNamesAcrossLayers returns, for every class name defined in two or
// more of the given layers, the ordered sub-list of layers that define it.
// Names defined in only one layer are omitted. This is a pure function:
// it never mutates its input and has no side effects.
func SameNamesAcrossLayers(layers []*Code) map[string][]*Code {
	layersByName := map[string][]*Code{}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		for _, name := range layer.ClassNames() {
			layersByName[name] = append(layersByName[name], layer)
		}
	}
	return filterConflicts(layersByName)
}

// SameNamesInParentAndLayers returns, for every class name defined by both
// the parent resolver and at least one layer, the ordered sub-list of
// layers that define it. A parent that panics is treated as not defining
// the class, never as an error.
func SameNamesInParentAndLayers(parent ParentResolver, layers []*Code) map[string][]*Code {
	layersByName := map[string][]*Code{}
	parentHasName := map[string]bool{}
	checked := map[string]bool{}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		for _, name := range layer.ClassNames() {
			if !checked[name] {
				_, parentHasName[name] = ProbeParent(parent, name)
				checked[name] = true
			}
			if parentHasName[name] {
				layersByName[name] = append(layersByName[name], layer)
			}
		}
	}
	return layersByName
}

// ToConflictError converts the name -> defining-layers maps returned by
// SameNamesAcrossLayers and/or SameNamesInParentAndLayers (either of which
// may be nil) into an *errs.ClassNameConflictError. Each defining layer is
// identified by its position in layers, the full stack the maps were
// computed against — the only form of layer identity the errs package, a
// leaf package with no dependency on this one, is allowed to carry.
func ToConflictError(layers []*Code, acrossLayers, parentAndLayers map[string][]*Code) *errs.ClassNameConflictError {
	return errs.NewClassNameConflictError(toLayerConflicts(layers, acrossLayers), toLayerConflicts(layers, parentAndLayers))
}

func toLayerConflicts(layers []*Code, byName map[string][]*Code) []errs.LayerConflict {
	if len(byName) == 0 {
		return nil
	}
	out := make([]errs.LayerConflict, 0, len(byName))
	for name, defs := range byName {
		out = append(out, errs.LayerConflict{ClassName: name, Layers: defIndices(layers, defs)})
	}
	return out
}

// defIndices maps each defining layer back to its index in the full layer
// stack, by pointer identity.
func defIndices(layers, defs []*Code) []int {
	idx := make([]int, 0, len(defs))
	for _, def := range defs {
		for i, layer := range layers {
			if layer == def {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// filterConflicts drops entries defined by fewer than two layers.
func filterConflicts(byName map[string][]*Code) map[string][]*Code {
	out := map[string][]*Code{}
	for name, defs := range byName {
		if len(defs) >= 2 {
			out[name] = defs
		}
	}
	return out
}
