package wipmap

import (
	"fmt"
	"math"
)

// BiomeType is the closed set of terrain categories a cell or point can take.
type BiomeType uint8

const (
	Water BiomeType = iota
	Taiga
	Jungle
	Swamp
	Tundra
	Forest
	Plains
	Desert

	numBiomeTypes
)

var biomeNames = [numBiomeTypes]string{
	Water:  "WATER",
	Taiga:  "TAIGA",
	Jungle: "JUNGLE",
	Swamp:  "SWAMP",
	Tundra: "TUNDRA",
	Forest: "FOREST",
	Plains: "PLAINS",
	Desert: "DESERT",
}

// BiomeTypes returns every biome type in declaration order.
func BiomeTypes() []BiomeType {
	out := make([]BiomeType, numBiomeTypes)
	for i := range out {
		out[i] = BiomeType(i)
	}
	return out
}

// Valid reports whether b is one of the declared biome types.
func (b BiomeType) Valid() bool { return b < numBiomeTypes }

func (b BiomeType) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BiomeType(%d)", uint8(b))
	}
	return biomeNames[b]
}

// ParseBiomeType maps an upper-case biome name ("DESERT") to its type.
func ParseBiomeType(s string) (BiomeType, error) {
	for i, name := range biomeNames {
		if name == s {
			return BiomeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown biome type %q", s)
}

func (b BiomeType) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid biome type %d", uint8(b))
	}
	return []byte(biomeNames[b]), nil
}

func (b *BiomeType) UnmarshalText(text []byte) error {
	t, err := ParseBiomeType(string(text))
	if err != nil {
		return err
	}
	*b = t
	return nil
}

// BiomeTable maps quantized climate to a biome type. Rows are indexed by
// temperature, columns by humidity; both axes span [0, 1].
//
//	          humidity →
//	temp ↓   | dry    | mid    | wet
//	cold     | TAIGA  | JUNGLE | SWAMP
//	mild     | TUNDRA | FOREST | PLAINS
//	hot      | TUNDRA | PLAINS | DESERT
type BiomeTable [][]BiomeType

// DefaultBiomeTable returns the baseline 3x3 table shown above.
func DefaultBiomeTable() BiomeTable {
	return BiomeTable{
		{Taiga, Jungle, Swamp},
		{Tundra, Forest, Plains},
		{Tundra, Plains, Desert},
	}
}

// Lookup returns the biome for a (temperature, humidity) pair. Each value is
// quantized with floor(v * dimension) and clamped to the table, so 0 and
// values at or above 1 both resolve. The table must have passed validate.
func (t BiomeTable) Lookup(temperature, humidity float64) BiomeType {
	row := t[quantize(temperature, len(t))]
	return row[quantize(humidity, len(row))]
}

func quantize(v float64, dim int) int {
	if math.IsNaN(v) {
		return 0
	}
	i := int(math.Floor(v * float64(dim)))
	return min(max(i, 0), dim-1)
}

func (t BiomeTable) validate() error {
	if len(t) == 0 {
		return &OptionError{Field: "biomesMap", Reason: "table is empty"}
	}
	cols := len(t[0])
	for i, row := range t {
		if len(row) == 0 {
			return &OptionError{Field: "biomesMap", Reason: fmt.Sprintf("row %d is empty", i)}
		}
		if len(row) != cols {
			return &OptionError{Field: "biomesMap", Reason: fmt.Sprintf("row %d has %d columns, want %d", i, len(row), cols)}
		}
		for j, b := range row {
			if !b.Valid() {
				return &OptionError{Field: "biomesMap", Reason: fmt.Sprintf("entry [%d][%d] is not a biome type", i, j)}
			}
		}
	}
	return nil
}

func (t BiomeTable) clone() BiomeTable {
	out := make(BiomeTable, len(t))
	for i, row := range t {
		out[i] = append([]BiomeType(nil), row...)
	}
	return out
}
