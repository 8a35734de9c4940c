package builder

// Profile is a named preset of conversion parameters.
type Profile struct {
	Name     string
	TileSize int  // DZI tile edge and pyramid floor, px
	Quality  int  // lossy tile quality 1-100
	DZI      bool // generate the deep-zoom pyramid for converted slides
	BigTIFF  bool // 64-bit TIFF container
}

// Built-in profiles.
var profiles = map[string]Profile{
	"default": {
		Name:     "default",
		TileSize: 2560,
		Quality:  70,
		DZI:      true,
		BigTIFF:  true,
	},
	"no-dzi": {
		Name:     "no-dzi",
		TileSize: 2560,
		Quality:  70,
		DZI:      false,
		BigTIFF:  true,
	},
	"fine-tiles": {
		Name:     "fine-tiles",
		TileSize: 1024,
		Quality:  80,
		DZI:      true,
		BigTIFF:  true,
	},
}

// GetProfile returns a profile by name. Falls back to default if unknown.
func GetProfile(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["default"]
	p.Name = name // preserve requested name
	return p
}
