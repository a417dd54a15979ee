package domain

// Metadata is an unstructured metadata container for domain entities.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	copy := make(Metadata, len(m))
	for k, v := range m {
		copy[k] = v
	}
	return copy
}

// ContentType tags the medium of a template or asset.
type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeText  ContentType = "text"
	ContentTypeMusic ContentType = "music"
	ContentTypeVideo ContentType = "video"
)

// Element is one of the fixed aesthetic domains driving prompt vocabulary.
type Element string

const (
	ElementFire   Element = "fire"
	ElementWater  Element = "water"
	ElementEarth  Element = "earth"
	ElementWind   Element = "wind"
	ElementVoid   Element = "void"
	ElementSpirit Element = "spirit"
)

func (e Element) Valid() bool {
	switch e {
	case ElementFire, ElementWater, ElementEarth, ElementWind, ElementVoid, ElementSpirit:
		return true
	}
	return false
}

// Elements lists every valid element in a stable order.
func Elements() []Element {
	return []Element{ElementFire, ElementWater, ElementEarth, ElementWind, ElementVoid, ElementSpirit}
}
