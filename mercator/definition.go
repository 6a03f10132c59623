package mercator

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
)

var (
	//go:embed pyramids/*.json
	embeddedDefinitionsFS    embed.FS
	embeddedDefinitionsCache = make(map[string]*Definition)
)

var (
	crsURIRegexURL = regexp.MustCompile("https?://.+/def/crs/(?P<authority>[^/]+)/[^/]+/(?P<code>[^/]+)$")
	crsURIRegexURN = regexp.MustCompile("^urn:ogc:def:crs:(?P<authority>[^:]+)::(?P<code>[^:]+)$")
)

// Definition describes a tile pyramid: its CRS, tile edge length and the
// zoom range it is published for. Definitions are the JSON configuration
// surface of this library; see the embedded pyramids directory.
type Definition struct {
	// Pyramid identifier
	ID string `validate:"required" json:"id"`
	// Title of this pyramid, normally used for display to a human
	Title string `json:"title,omitempty"`
	// Coordinate reference system, as an OGC CRS URI or URN
	CRS string `validate:"required,uri" json:"crs"`
	// Pixel edge length of one tile
	TileSize uint `default:"256" validate:"required,min=1" json:"tileSize"`
	// Shallowest zoom level
	MinZoom uint `json:"minZoom,omitempty"`
	// Deepest zoom level
	MaxZoom uint `default:"30" validate:"required,lte=30,gtefield=MinZoom" json:"maxZoom"`

	authorityName string
	authorityCode string
}

func (d *Definition) UnmarshalJSON(data []byte) error {
	err := defaults.Set(d)
	if err != nil {
		return err
	}

	// unknown keys in hand-written definition files are tolerated
	_, err = marshmallow.Unmarshal(data, d, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}

	d.authorityName, d.authorityCode, err = parseCRS(d.CRS)
	if err != nil {
		return err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(d)
}

// parseCRS extracts the authority name and code from an OGC CRS URI or URN.
func parseCRS(crs string) (authorityName, authorityCode string, err error) {
	uriParts := crsURIRegexURL.FindStringSubmatch(crs)
	if uriParts == nil {
		uriParts = crsURIRegexURN.FindStringSubmatch(crs)
	}
	if uriParts == nil {
		return "", "", fmt.Errorf(`could not parse crs "%v"`, crs)
	}
	return uriParts[1], uriParts[2], nil
}

func (d *Definition) AuthorityName() string {
	if d.authorityName == "" {
		d.authorityName, d.authorityCode, _ = parseCRS(d.CRS)
	}
	return d.authorityName
}

func (d *Definition) AuthorityCode() string {
	if d.authorityCode == "" {
		d.authorityName, d.authorityCode, _ = parseCRS(d.CRS)
	}
	return d.authorityCode
}

func (d *Definition) SRID() uint {
	code, err := strconv.ParseUint(d.AuthorityCode(), 10, 64)
	if err != nil {
		panic(fmt.Errorf(`could not parse crs authority code: %w`, err))
	}
	return uint(code)
}

// NewFromDefinition builds the pyramid a definition describes. Only the
// spherical-mercator CRS (EPSG:3857 cq 900913) is supported.
func NewFromDefinition(def Definition) (Pyramid, error) {
	authorityName, authorityCode, err := parseCRS(def.CRS)
	if err != nil {
		return Pyramid{}, err
	}
	if authorityName != "EPSG" || (authorityCode != "3857" && authorityCode != "900913") {
		return Pyramid{}, fmt.Errorf(`unsupported crs %v:%v, only spherical mercator (EPSG:3857 cq 900913) is supported`,
			authorityName, authorityCode)
	}
	if def.TileSize == 0 {
		return Pyramid{}, fmt.Errorf(`definition %v has a zero tile size`, def.ID)
	}
	return New(def.TileSize), nil
}

// LoadEmbeddedDefinition loads one of the pyramid definitions shipped with
// this library, e.g. "WebMercatorQuad".
func LoadEmbeddedDefinition(id string) (Definition, error) {
	var def Definition
	cached, ok := embeddedDefinitionsCache[id]
	if ok {
		return *cached, nil
	}
	defJSON, err := embeddedDefinitionsFS.ReadFile("pyramids/" + id + ".json")
	if err != nil {
		return def, err
	}
	err = json.Unmarshal(defJSON, &def)
	if err != nil {
		return def, err
	}
	embeddedDefinitionsCache[id] = &def
	return def, nil
}

// LoadJSONDefinition loads a pyramid definition from a JSON file.
func LoadJSONDefinition(path string) (Definition, error) {
	var def Definition
	defJSON, err := os.ReadFile(path)
	if err != nil {
		return def, err
	}
	err = json.Unmarshal(defJSON, &def)
	if err != nil {
		return def, err
	}
	return def, nil
}
